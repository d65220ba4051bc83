package pivot

import (
	"fmt"
	"slices"
	"strings"

	"ratebridge/internal/analyze"
	"ratebridge/internal/diagnostic"
	"ratebridge/internal/table"
)

// Detection names the tier and value source fields.
type Detection struct {
	Tier  string
	Value string
}

// DetectColumns finds the tier and value fields among the numeric fields of
// ds that are neither claimed nor already set in have.
//
// Tier: distinct values at least 50% canonical tiers with at least two
// matches; the score is that share (0-100) plus 20 when the name contains
// "deduct". Highest score wins, ties go to the earlier column.
//
// Value: the sole remaining numeric field, else the first one whose values
// are all non-negative and below the ceiling.
//
// A field that stays unresolved is a *diagnostic.SchemaError.
func DetectColumns(
	ds *table.Dataset,
	profiles []analyze.ColumnProfile,
	claimed []string,
	have Detection,
	cfg Config,
) (Detection, error) {
	out := have
	taken := slices.Clone(claimed)
	taken = append(taken, have.Tier, have.Value)

	var numeric []analyze.ColumnProfile

	for _, p := range profiles {
		if p.Type.IsNumeric() && !p.Failed() && !slices.Contains(taken, p.Name) {
			numeric = append(numeric, p)
		}
	}

	if out.Tier == "" {
		best := 0.0

		for _, p := range numeric {
			if score := tierScore(ds.Column(p.Name), p.Name, cfg.CanonicalTiers); score > best {
				best, out.Tier = score, p.Name
			}
		}
	}

	if out.Value == "" {
		remaining := slices.DeleteFunc(slices.Clone(numeric), func(p analyze.ColumnProfile) bool {
			return p.Name == out.Tier
		})

		if len(remaining) == 1 {
			out.Value = remaining[0].Name
		} else {
			for _, p := range remaining {
				if p.Min >= 0 && p.Max < cfg.ValueCeiling {
					out.Value = p.Name

					break
				}
			}
		}
	}

	var missing []string

	if out.Tier == "" {
		missing = append(missing, cfg.TierField)
	}

	if out.Value == "" {
		missing = append(missing, cfg.ValueField)
	}

	if len(missing) > 0 {
		rows, cols := ds.Shape()

		return out, &diagnostic.SchemaError{
			Rule:    "pivot-columns",
			Fields:  missing,
			Rows:    rows,
			Columns: cols,
			Detail:  fmt.Sprintf("no source field resembles %s", strings.Join(missing, " or ")),
		}
	}

	return out, nil
}

// tierScore returns 0 when the values do not look like deductible tiers.
func tierScore(values []table.Value, name string, canonical []float64) float64 {
	distinct := make(map[float64]struct{})

	for _, v := range values {
		if f, ok := v.Float(); ok {
			distinct[f] = struct{}{}
		}
	}

	if len(distinct) == 0 {
		return 0
	}

	matches := 0

	for f := range distinct {
		if slices.Contains(canonical, f) {
			matches++
		}
	}

	share := float64(matches) / float64(len(distinct))
	if share < 0.5 || matches < 2 {
		return 0
	}

	score := share * 100
	if strings.Contains(strings.ToLower(name), "deduct") {
		score += 20
	}

	return score
}
