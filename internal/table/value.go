package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the kind of a cell value.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a single cell. The zero Value is Empty.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Empty returns the canonical empty value.
func Empty() Value { return Value{} }

// String returns a string value. Use Infer for raw cell text.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value. NaN and infinities are stored as Empty.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}

	return Value{kind: KindNumber, num: f}
}

// Infer converts raw cell text into a Value.
//   - blank text becomes Empty
//   - text that parses as a number becomes Number, unless it carries a
//     leading zero ("007"), which is kept as String
//   - everything else becomes String (untrimmed text is trimmed)
func Infer(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}
	}

	if hasLeadingZero(s) {
		return String(s)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}

	return String(s)
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is Empty.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Float returns the numeric reading of the value. Strings are parsed after
// trimming whitespace and stripping currency symbols and thousands separators.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		s := strings.TrimSpace(v.str)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// Text returns the canonical string form: "" for Empty, the shortest exact
// decimal for numbers, and the raw text for strings.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Text() }

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.num == o.num
}

// Round2 rounds numeric values to two decimal places. Other kinds are
// returned unchanged.
func (v Value) Round2() Value {
	if v.kind != KindNumber {
		return v
	}

	return Number(math.Round(v.num*100) / 100)
}

// Any returns the value as a plain Go value (nil, string or float64), the
// form spreadsheet writers expect.
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	default:
		return nil
	}
}
