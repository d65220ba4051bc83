package analyze

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ratebridge/internal/table"
)

// MaxSamples is the number of sample values kept per profile.
const MaxSamples = 5

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
}

// profileField builds the profile for one field. It never panics: a failure
// inside is recovered and reported through the profile's Err with a
// best-effort type guess.
func (a *Analyzer) profileField(name string, values []table.Value) (p ColumnProfile) {
	defer func() {
		if r := recover(); r != nil {
			p = ColumnProfile{
				Name: name,
				Type: guessType(values),
				Err:  fmt.Sprint(r),
			}
		}
	}()

	p.Name = name

	var (
		nonNull []table.Value
		nums    []float64
		seen    = make(map[string]struct{})
	)

	for _, v := range values {
		if v.IsEmpty() {
			continue
		}

		nonNull = append(nonNull, v)

		key := v.Text()
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			if len(p.Samples) < MaxSamples {
				p.Samples = append(p.Samples, v)
			}
		}

		if f, ok := v.Float(); ok {
			nums = append(nums, f)
		}
	}

	p.Distinct = len(seen)
	if len(values) > 0 {
		p.NullRatio = float64(len(values)-len(nonNull)) / float64(len(values))
	}

	p.Type = inferType(nonNull, nums)

	if p.Type.IsNumeric() {
		p.HasStats = true
		p.Min, p.Max, p.Mean = stats(nums)
	}

	p.Tag = a.tagByName(name)
	if p.Tag == "" && p.Type.IsNumeric() {
		p.Tag = a.tagByValues(p.Type, nums)
	}

	return p
}

// inferType classifies non-null values. Numeric wins only when every value
// parses as a number.
func inferType(nonNull []table.Value, nums []float64) ValueType {
	if len(nonNull) == 0 {
		return TypeUnknown
	}

	if len(nums) == len(nonNull) {
		for _, f := range nums {
			if f != math.Trunc(f) {
				return TypeFloat
			}
		}

		return TypeInteger
	}

	for _, v := range nonNull {
		if v.Kind() != table.KindString || !isDate(v.Text()) {
			return TypeString
		}
	}

	return TypeDatetime
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}

// guessType looks at the first non-null value only.
func guessType(values []table.Value) ValueType {
	for _, v := range values {
		switch v.Kind() {
		case table.KindNumber:
			return TypeFloat
		case table.KindString:
			return TypeString
		case table.KindEmpty:
			continue
		}
	}

	return TypeUnknown
}

func stats(nums []float64) (lo, hi, mean float64) {
	if len(nums) == 0 {
		return 0, 0, 0
	}

	lo, hi = nums[0], nums[0]

	var sum float64
	for _, f := range nums {
		lo = min(lo, f)
		hi = max(hi, f)
		sum += f
	}

	return lo, hi, sum / float64(len(nums))
}
