package pivot

import (
	"slices"
	"strconv"

	"ratebridge/internal/mapping"
)

// Config names the fields the engine works with.
type Config struct {
	// TierField holds the deductible tier of a narrow row.
	TierField string
	// ValueField holds the rate of a narrow row.
	ValueField string
	// PrimaryField receives the selected primary tier.
	PrimaryField string
	// TierPrefix prefixes synthesized tier columns (Deduct100).
	TierPrefix string
	// ClassField is read by the low-tier-class rule.
	ClassField string
	// IdentityFields lead every output row, in order.
	IdentityFields []string
	// StandardTiers are emitted on every row, empty when absent.
	StandardTiers []int
	// CanonicalTiers is the tier set the column detector recognises.
	CanonicalTiers []float64
	// ValueCeiling bounds plausible rate values for the column detector.
	ValueCeiling float64
	// Policy selects the primary tier.
	Policy Policy
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		TierField:      mapping.FieldDeductible,
		ValueField:     mapping.FieldRateCost,
		PrimaryField:   mapping.FieldPlanDeduct,
		TierPrefix:     "Deduct",
		ClassField:     mapping.FieldClass,
		IdentityFields: slices.Clone(mapping.IdentityFields),
		StandardTiers:  []int{0, 50, 100, 200, 250, 500},
		CanonicalTiers: []float64{0, 50, 100, 200, 250, 500, 1000},
		ValueCeiling:   10000,
		Policy:         DefaultPolicy(),
	}
}

// TierColumn returns the output column name for tier n.
func (c Config) TierColumn(n int) string {
	return c.TierPrefix + strconv.Itoa(n)
}

// GroupFields returns the grouping-key fields for a schema: every field
// except the tier, value and primary fields.
func (c Config) GroupFields(schema []string) []string {
	out := make([]string, 0, len(schema))
	for _, f := range schema {
		if f != c.TierField && f != c.ValueField && f != c.PrimaryField {
			out = append(out, f)
		}
	}

	return out
}
