package analyze

import (
	"math"
	"slices"
	"strings"

	"ratebridge/internal/match"
)

// nameRule tags a field by its name. Rules are tried in order.
type nameRule struct {
	tag   string
	match func(compact string, words []string) bool
}

// valueRule tags a numeric field by its values. Rules are tried in order.
type valueRule struct {
	tag   string
	match func(t ValueType, nums []float64) bool
}

// CanonicalTiers is the set of deductible amounts recognised in values.
var CanonicalTiers = []float64{0, 50, 100, 200, 250, 500, 1000}

// TermMonths is the set of contract terms recognised in values.
var TermMonths = []float64{12, 24, 36, 48, 60, 72, 84, 96, 120}

func defaultNameRules() []nameRule {
	return []nameRule{
		{TagFromMiles, func(c string, w []string) bool {
			return strings.Contains(c, "mile") && qualified(c, w, "from", "start", "min", "low")
		}},
		{TagToMiles, func(c string, w []string) bool {
			return strings.Contains(c, "mile") && qualified(c, w, "to", "end", "max", "high")
		}},
		{TagMileage, func(c string, w []string) bool {
			return containsAny(c, "mile", "distance", "odometer") || slices.Contains(w, "km")
		}},
		{TagMinYear, func(c string, w []string) bool {
			return containsAny(c, "minyear", "yearmin") ||
				(strings.Contains(c, "year") && hasWord(w, "min", "start", "from"))
		}},
		{TagMaxYears, func(c string, w []string) bool {
			return containsAny(c, "maxyear", "yearmax", "yearlimit") ||
				(strings.Contains(c, "year") && hasWord(w, "max", "end", "to"))
		}},
		{TagDeductible, func(c string, w []string) bool {
			return containsAny(c, "deduct") || hasWord(w, "ded")
		}},
		{TagCoverage, func(c string, w []string) bool {
			return strings.Contains(c, "cover") || hasWord(w, "cov")
		}},
		{TagClass, func(c string, _ []string) bool {
			return containsAny(c, "class", "category")
		}},
		{TagTerm, func(c string, _ []string) bool {
			return containsAny(c, "term", "duration", "period")
		}},
		{TagRateCost, func(c string, _ []string) bool {
			return containsAny(c, "rate", "cost", "price", "premium") && !containsAny(c, "card", "code")
		}},
	}
}

func defaultValueRules() []valueRule {
	return []valueRule{
		{TagYear, func(t ValueType, nums []float64) bool {
			return t == TypeInteger && allWithin(nums, 1990, 2050)
		}},
		{TagMileage, func(_ ValueType, nums []float64) bool {
			return allMultiplesOf(nums, 1000) && allAbove(nums, 1000)
		}},
		{TagDeductible, func(_ ValueType, nums []float64) bool {
			return allIn(nums, CanonicalTiers)
		}},
		{TagTerm, func(t ValueType, nums []float64) bool {
			return t == TypeInteger && allIn(nums, TermMonths)
		}},
	}
}

func (a *Analyzer) tagByName(name string) string {
	compact := match.Compact(name)
	words := match.TokenizeName(name)

	for _, r := range a.nameRules {
		if r.match(compact, words) {
			return r.tag
		}
	}

	return ""
}

func (a *Analyzer) tagByValues(t ValueType, nums []float64) string {
	if len(nums) == 0 {
		return ""
	}

	for _, r := range a.valueRules {
		if r.match(t, nums) {
			return r.tag
		}
	}

	return ""
}

// qualified reports whether one of the qualifiers is a separate word of the
// name or directly precedes "mile" in the compact form ("frommiles").
func qualified(compact string, words []string, qualifiers ...string) bool {
	for _, q := range qualifiers {
		if strings.Contains(compact, q+"mile") {
			return true
		}
	}

	return hasWord(words, qualifiers...)
}

func hasWord(words []string, candidates ...string) bool {
	for _, w := range words {
		if slices.Contains(candidates, w) {
			return true
		}
	}

	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

func allWithin(nums []float64, lo, hi float64) bool {
	for _, f := range nums {
		if f < lo || f > hi {
			return false
		}
	}

	return true
}

func allAbove(nums []float64, floor float64) bool {
	for _, f := range nums {
		if f <= floor {
			return false
		}
	}

	return true
}

func allMultiplesOf(nums []float64, step float64) bool {
	for _, f := range nums {
		if math.Mod(f, step) != 0 {
			return false
		}
	}

	return true
}

func allIn(nums []float64, set []float64) bool {
	for _, f := range nums {
		if !slices.Contains(set, f) {
			return false
		}
	}

	return true
}
