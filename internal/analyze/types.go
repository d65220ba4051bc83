package analyze

import (
	"ratebridge/internal/common"
	"ratebridge/internal/diagnostic"
	"ratebridge/internal/table"
)

// ValueType is the inferred type of a field.
type ValueType int

const (
	TypeUnknown  ValueType = iota
	TypeInteger            // numeric, no fractional parts
	TypeFloat              // numeric
	TypeString             // free text
	TypeDatetime           // dates or timestamps
)

// String returns a human-readable representation of the ValueType.
func (t ValueType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeDatetime:
		return "datetime"
	default:
		return common.UnknownStr
	}
}

// IsNumeric reports whether the type is integer or float.
func (t ValueType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Semantic tags.
const (
	TagCoverage   = "coverage"
	TagTerm       = "term"
	TagMileage    = "mileage"
	TagFromMiles  = "frommiles"
	TagToMiles    = "tomiles"
	TagMinYear    = "minyear"
	TagMaxYears   = "maxyears"
	TagYear       = "year"
	TagClass      = "class"
	TagDeductible = "deductible"
	TagRateCost   = "ratecost"
)

// ColumnProfile describes one field of a dataset.
type ColumnProfile struct {
	Name      string
	Type      ValueType
	Distinct  int
	NullRatio float64       // 0..1
	Samples   []table.Value // first distinct non-null values, at most MaxSamples

	// Numeric statistics, set when HasStats is true.
	HasStats bool
	Min      float64
	Max      float64
	Mean     float64

	Tag string // semantic tag guess, empty when none
	Err string // set when profiling this field failed
}

// Failed reports whether profiling this field failed.
func (p ColumnProfile) Failed() bool {
	return p.Err != ""
}

// Purpose classifies a dataset as a structural template or real data.
type Purpose int

const (
	PurposeData Purpose = iota
	PurposeTemplate
)

// String returns a human-readable representation of the Purpose.
func (p Purpose) String() string {
	switch p {
	case PurposeData:
		return "data"
	case PurposeTemplate:
		return "template"
	default:
		return common.UnknownStr
	}
}

// Layout describes where deductible tiers live in a dataset.
type Layout int

const (
	LayoutNone      Layout = iota // no deductible information found
	LayoutUnpivoted               // one field holds tier values
	LayoutPivoted                 // one field per tier (Deduct100, ...)
)

// String returns a human-readable representation of the Layout.
func (l Layout) String() string {
	switch l {
	case LayoutNone:
		return "none"
	case LayoutUnpivoted:
		return "unpivoted"
	case LayoutPivoted:
		return "pivoted"
	default:
		return common.UnknownStr
	}
}

// TierField is a field that already holds one deductible tier.
type TierField struct {
	Field string
	Tier  int
}

// Structure is the analysis result for a whole dataset.
type Structure struct {
	RowCount      int
	Fields        []string
	Profiles      []ColumnProfile // same order as Fields
	PotentialKeys []string
	Purpose       Purpose
	Layout        Layout
	TierFields    []TierField // set when Layout is LayoutPivoted, ascending by tier
	Diagnostics   diagnostic.Diagnostics
}

// Profile returns the profile of the named field.
func (s *Structure) Profile(name string) (ColumnProfile, bool) {
	for _, p := range s.Profiles {
		if p.Name == name {
			return p, true
		}
	}

	return ColumnProfile{}, false
}

// Tagged returns the fields carrying tag, in column order.
func (s *Structure) Tagged(tag string) []string {
	var out []string

	for _, p := range s.Profiles {
		if p.Tag == tag {
			out = append(out, p.Name)
		}
	}

	return out
}

// Types returns the field name to type-name pairs used for signatures.
func (s *Structure) Types() map[string]string {
	out := make(map[string]string, len(s.Profiles))
	for _, p := range s.Profiles {
		out[p.Name] = p.Type.String()
	}

	return out
}
