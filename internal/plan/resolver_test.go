package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratebridge/internal/analyze"
	"ratebridge/internal/mapping"
)

func fixedScorer(scores map[string]int) func(source, target string) int {
	return func(source, _ string) int { return scores[source] }
}

func TestExactNamePriority(t *testing.T) {
	r := NewResolver(DefaultConfig())
	p := r.ResolveNames([]string{"Coverage Type", "cov", "Coverage"}, mapping.Schema{"Coverage"})

	a, ok := p.Mapping.Get("Coverage")
	require.True(t, ok)
	assert.Equal(t, mapping.Assignment{Source: "Coverage", Confidence: 100, Reason: mapping.ReasonExact}, a)
	assert.Empty(t, p.Unmapped)
}

func TestSynonymFirstInColumnOrder(t *testing.T) {
	r := NewResolver(DefaultConfig())
	p := r.ResolveNames([]string{"Contract Months", "Duration"}, mapping.Schema{"Term"})

	a, _ := p.Mapping.Get("Term")
	assert.Equal(t, "Contract Months", a.Source)
	assert.Equal(t, ConfidenceSynonym, a.Confidence)
	assert.Equal(t, mapping.ReasonSynonym, a.Reason)
}

func TestFuzzyThresholdBoundary(t *testing.T) {
	tests := []struct {
		name     string
		scores   map[string]int
		expected string
	}{
		{"exactly 60 rejected", map[string]int{"Alpha": 60}, ""},
		{"61 accepted", map[string]int{"Alpha": 60, "Beta": 61}, "Beta"},
		{"tie keeps earlier column", map[string]int{"Alpha": 75, "Beta": 75}, "Alpha"},
		{"higher later wins", map[string]int{"Alpha": 65, "Beta": 90}, "Beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Scorer = fixedScorer(tt.scores)

			p := NewResolver(cfg).ResolveNames([]string{"Alpha", "Beta"}, mapping.Schema{"Markup"})

			assert.Equal(t, tt.expected, p.Mapping.Source("Markup"))

			if tt.expected == "" {
				require.Len(t, p.Unmapped, 1)
				assert.Equal(t, "Markup", p.Unmapped[0].Target)
			} else {
				a, _ := p.Mapping.Get("Markup")
				assert.Equal(t, tt.scores[tt.expected], a.Confidence)
				assert.Equal(t, mapping.ReasonFuzzy, a.Reason)
			}
		})
	}
}

func TestAmbiguousFuzzyMatch(t *testing.T) {
	tests := []struct {
		name      string
		scores    map[string]int
		ambiguous bool
	}{
		{"near tie", map[string]int{"Alpha": 75, "Beta": 72}, true},
		{"clear winner", map[string]int{"Alpha": 90, "Beta": 70}, false},
		{"runner-up below threshold", map[string]int{"Alpha": 64, "Beta": 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Scorer = fixedScorer(tt.scores)

			p := NewResolver(cfg).ResolveNames([]string{"Alpha", "Beta"}, mapping.Schema{"Markup"})
			require.Equal(t, "Alpha", p.Mapping.Source("Markup"))

			if !tt.ambiguous {
				assert.Empty(t, p.Diagnostics.Warnings)
				return
			}

			require.Len(t, p.Diagnostics.Warnings, 1)
			w := p.Diagnostics.Warnings[0]
			assert.Equal(t, "ambiguous_match", w.Code)
			assert.Equal(t, "Markup", w.Field)
			assert.Equal(t, []string{"Alpha", "Beta"}, w.Suggestions)
		})
	}
}

func TestPivotFieldsSkipFuzzy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scorer = fixedScorer(map[string]int{"Amt": 99})

	p := NewResolver(cfg).ResolveNames([]string{"Amt"}, mapping.Schema{"RateCost", "Markup"})

	assert.Empty(t, p.Mapping.Source("RateCost"))
	assert.Equal(t, "Amt", p.Mapping.Source("Markup"))
	require.Len(t, p.Unmapped, 1)
	assert.Equal(t, "left to the pivot-column detector", p.Unmapped[0].Reason)
	assert.Equal(t, []string{"Markup"}, p.Required()[:1])
}

func TestDefaultScorerFuzzyMatch(t *testing.T) {
	p := NewResolver(DefaultConfig()).ResolveNames([]string{"Mark Up %"}, mapping.Schema{"Markup"})

	a, ok := p.Mapping.Get("Markup")
	require.True(t, ok)
	assert.Equal(t, mapping.ReasonFuzzy, a.Reason)
	assert.Greater(t, a.Confidence, 60)
}

func TestContentTier(t *testing.T) {
	s := &analyze.Structure{Profiles: []analyze.ColumnProfile{
		{Name: "Band", Tag: analyze.TagFromMiles},
		{Name: "Plan Period"},
		{Name: "X", Tag: analyze.TagTerm},
	}}

	p := NewResolver(DefaultConfig()).Resolve(s, mapping.Schema{"FromMiles", "Term"})

	a, _ := p.Mapping.Get("FromMiles")
	assert.Equal(t, mapping.Assignment{Source: "Band", Confidence: 90, Reason: mapping.ReasonContent}, a)

	a, _ = p.Mapping.Get("Term")
	assert.Equal(t, "X", a.Source, "content overrides a synonym guess")
	assert.Equal(t, mapping.ReasonContent, a.Reason)
}

func TestPivotSourcesServeNoOtherTarget(t *testing.T) {
	s := &analyze.Structure{Profiles: []analyze.ColumnProfile{
		{Name: "Coverage", Tag: analyze.TagCoverage},
		{Name: "Term", Tag: analyze.TagTerm},
		{Name: "Tier", Tag: analyze.TagDeductible},
		{Name: "Value"},
	}}

	p := NewResolver(DefaultConfig()).Resolve(s, mapping.Schema{"Coverage", "Term", "Miles", "Class", "Deductible", "RateCost"})

	a, ok := p.Mapping.Get("Deductible")
	require.True(t, ok)
	assert.Equal(t, mapping.Assignment{Source: "Tier", Confidence: 90, Reason: mapping.ReasonContent}, a)

	assert.Empty(t, p.Mapping.Source("Class"), "synonym tier is claimed")
	assert.Empty(t, p.Mapping.Source("Miles"), "fuzzy tier is claimed")
	assert.Equal(t, []string{"Coverage", "Term", "Deductible"}, p.Mapping.Targets())
}

func TestTierFieldsAreNotCandidates(t *testing.T) {
	s := &analyze.Structure{
		Profiles:   []analyze.ColumnProfile{{Name: "Deduct100", Tag: analyze.TagDeductible}},
		TierFields: []analyze.TierField{{Field: "Deduct100", Tier: 100}},
	}

	p := NewResolver(DefaultConfig()).Resolve(s, mapping.Schema{"Deductible"})

	assert.True(t, p.Mapping.IsEmpty())
	assert.Empty(t, p.Sources)
}

func TestExactColumnsAreReserved(t *testing.T) {
	p := NewResolver(DefaultConfig()).ResolveNames(
		[]string{"RateCardCode", "Dealer Cost"},
		mapping.Schema{"RateCost", "RateCardCode"},
	)

	assert.Equal(t, "Dealer Cost", p.Mapping.Source("RateCost"))
	assert.Equal(t, "RateCardCode", p.Mapping.Source("RateCardCode"))
}

func TestOneSourceMayServeSeveralTargets(t *testing.T) {
	p := NewResolver(DefaultConfig()).ResolveNames([]string{"Coverage Class"}, mapping.Schema{"Coverage", "Class"})

	assert.Equal(t, "Coverage Class", p.Mapping.Source("Coverage"))
	assert.Equal(t, "Coverage Class", p.Mapping.Source("Class"))
}

func TestEmptySchema(t *testing.T) {
	p := NewResolver(DefaultConfig()).ResolveNames([]string{"Coverage"}, nil)

	assert.True(t, p.Mapping.IsEmpty())
	assert.Empty(t, p.Unmapped)
	assert.False(t, p.NeedsReview(70))
}

func TestNeedsReview(t *testing.T) {
	var m mapping.FieldMapping
	m = m.With("Coverage", mapping.Assignment{Source: "Plan", Confidence: 80, Reason: mapping.ReasonSynonym})

	p := &Plan{Mapping: m}
	assert.False(t, p.NeedsReview(70))

	p.Mapping = m.With("Markup", mapping.Assignment{Source: "Mk", Confidence: 61, Reason: mapping.ReasonFuzzy})
	assert.True(t, p.NeedsReview(70))
}

func TestUnmappedDiagnostics(t *testing.T) {
	p := NewResolver(DefaultConfig()).ResolveNames([]string{"Zzz"}, mapping.Schema{"State"})

	require.Len(t, p.Unmapped, 1)
	require.Len(t, p.Diagnostics.Warnings, 1)
	assert.Equal(t, "unmapped_field", p.Diagnostics.Warnings[0].Code)
	assert.Equal(t, "State", p.Diagnostics.Warnings[0].Field)
}
