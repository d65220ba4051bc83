package pivot

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"ratebridge/internal/common"
	"ratebridge/internal/table"
)

//go:generate go tool stringer -type=RuleKind -linecomment -output=rulekind_string.go

// RuleKind is one step of the primary-tier policy.
type RuleKind int

const (
	_ RuleKind = iota // skip zero value, use it as a default (invalid) value for RuleKind

	RuleDefault      // default
	RuleLowTierClass // low-tier-class
	RuleTier         // tier
	RuleLowest       // lowest
)

// Rule is a policy step. Tier is used by RuleTier only.
type Rule struct {
	Kind RuleKind
	Tier int
}

// String returns the textual form accepted by ParseRule.
func (r Rule) String() string {
	if r.Kind == RuleTier {
		return fmt.Sprintf("%s:%d", r.Kind, r.Tier)
	}

	return r.Kind.String()
}

// ParseRule parses "default", "low-tier-class", "tier:<N>" or "lowest".
func ParseRule(s string) (Rule, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch {
	case s == RuleDefault.String():
		return Rule{Kind: RuleDefault}, nil
	case s == RuleLowTierClass.String():
		return Rule{Kind: RuleLowTierClass}, nil
	case s == RuleLowest.String():
		return Rule{Kind: RuleLowest}, nil
	case strings.HasPrefix(s, RuleTier.String()+":"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, RuleTier.String()+":"))
		if err != nil || n < 0 {
			return Rule{}, fmt.Errorf("invalid tier rule %q", s)
		}

		return Rule{Kind: RuleTier, Tier: n}, nil
	default:
		return Rule{}, fmt.Errorf("unknown primary tier rule %q", s)
	}
}

// ParseRules parses a rule list.
func ParseRules(specs []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))

	for _, s := range specs {
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	return rules, nil
}

// DefaultRules is the standard priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: RuleDefault},
		{Kind: RuleLowTierClass},
		{Kind: RuleTier, Tier: 100},
		{Kind: RuleLowest},
	}
}

// Policy selects the primary tier of a row. Rules are tried in order and the
// first satisfied rule wins.
type Policy struct {
	Rules          []Rule
	DefaultTier    int
	LowTierClasses []string
}

// DefaultPolicy returns the standard policy: default tier 100, low-tier
// classes C and D.
func DefaultPolicy() Policy {
	return Policy{
		Rules:          DefaultRules(),
		DefaultTier:    100,
		LowTierClasses: []string{"C", "D"},
	}
}

// Select returns the primary tier for a row whose tier values are given.
// Empty values do not count. It reports false when no tier has a value.
func (p Policy) Select(values map[int]table.Value, class table.Value) (int, bool) {
	var present []int

	for tier, v := range values {
		if !v.IsEmpty() {
			present = append(present, tier)
		}
	}

	if len(present) == 0 {
		return 0, false
	}

	slices.Sort(present)

	for _, r := range p.Rules {
		switch r.Kind {
		case RuleDefault:
			if slices.Contains(present, p.DefaultTier) {
				return p.DefaultTier, true
			}
		case RuleLowTierClass:
			if p.isLowTierClass(class) {
				return present[0], true
			}
		case RuleTier:
			if slices.Contains(present, r.Tier) {
				return r.Tier, true
			}
		case RuleLowest:
			return present[0], true
		}
	}

	return 0, false
}

func (p Policy) isLowTierClass(class table.Value) bool {
	c := strings.TrimSpace(class.Text())

	return c != "" && common.ContainsFold(p.LowTierClasses, c)
}
