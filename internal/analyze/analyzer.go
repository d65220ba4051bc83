package analyze

import (
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"ratebridge/internal/table"
)

// DefaultTemplateRowThreshold is the row count below which a dataset is
// treated as a structural template.
const DefaultTemplateRowThreshold = 5

// tierFieldPattern matches fields that already hold one deductible tier.
var tierFieldPattern = regexp.MustCompile(`(?i)deduct(ible)?[_ ]?(\d+)$`)

// Analyzer profiles datasets.
type Analyzer struct {
	// TemplateRowThreshold: datasets with fewer rows are templates.
	TemplateRowThreshold int
	// Logger receives per-field failures. Nil means slog.Default().
	Logger *slog.Logger

	nameRules  []nameRule
	valueRules []valueRule
}

// NewAnalyzer creates an analyzer with the default heuristics.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		TemplateRowThreshold: DefaultTemplateRowThreshold,
		nameRules:            defaultNameRules(),
		valueRules:           defaultValueRules(),
	}
}

// Analyze profiles ds with a default analyzer.
func Analyze(ds *table.Dataset) *Structure {
	return NewAnalyzer().Analyze(ds)
}

// Profiles returns one profile per field of ds, in field order. An empty
// dataset yields no profiles.
func (a *Analyzer) Profiles(ds *table.Dataset) []ColumnProfile {
	if ds == nil {
		return nil
	}

	profiles := make([]ColumnProfile, 0, len(ds.Fields))
	for _, f := range ds.Fields {
		profiles = append(profiles, a.profileField(f, ds.Column(f)))
	}

	return profiles
}

// Analyze profiles every field and derives the dataset-level findings.
func (a *Analyzer) Analyze(ds *table.Dataset) *Structure {
	s := &Structure{}
	if ds == nil {
		return s
	}

	s.RowCount = ds.Len()
	s.Fields = slices.Clone(ds.Fields)
	s.Profiles = a.Profiles(ds)

	logger := a.logger()

	for _, p := range s.Profiles {
		if p.Failed() {
			s.Diagnostics.AddError("analyze_failed", p.Err, p.Name)
			logger.Warn("field analysis failed",
				slog.String("field", p.Name),
				slog.String("error", p.Err),
				slog.String("guessed_type", p.Type.String()),
			)

			continue
		}

		if s.RowCount > 10 && float64(p.Distinct) > 0.9*float64(s.RowCount) {
			s.PotentialKeys = append(s.PotentialKeys, p.Name)
		}
	}

	threshold := a.TemplateRowThreshold
	if threshold <= 0 {
		threshold = DefaultTemplateRowThreshold
	}

	if s.RowCount < threshold {
		s.Purpose = PurposeTemplate
	}

	s.Layout, s.TierFields = detectLayout(s.Profiles)

	logger.Debug("analyzed dataset",
		slog.Int("rows", s.RowCount),
		slog.Int("fields", len(s.Fields)),
		slog.String("purpose", s.Purpose.String()),
		slog.String("layout", s.Layout.String()),
	)

	return s
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}

	return slog.Default()
}

// TierFromField returns the tier number encoded in a pivoted field name such
// as "Deduct100", "Deductible 250" or "deduct_0".
func TierFromField(name string) (int, bool) {
	m := tierFieldPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}

	return n, true
}

func detectLayout(profiles []ColumnProfile) (Layout, []TierField) {
	var tiers []TierField

	hasTierValues := false

	for _, p := range profiles {
		if n, ok := TierFromField(p.Name); ok {
			tiers = append(tiers, TierField{Field: p.Name, Tier: n})

			continue
		}

		if p.Tag == TagDeductible && p.Type.IsNumeric() {
			hasTierValues = true
		}
	}

	switch {
	case len(tiers) > 0:
		slices.SortStableFunc(tiers, func(x, y TierField) int { return x.Tier - y.Tier })

		return LayoutPivoted, tiers
	case hasTierValues:
		return LayoutUnpivoted, nil
	default:
		return LayoutNone, nil
	}
}
