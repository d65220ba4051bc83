package analyze

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratebridge/internal/table"
)

func quietAnalyzer() *Analyzer {
	a := NewAnalyzer()
	a.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	return a
}

func dataset(fields []string, rows ...[]string) *table.Dataset {
	ds := table.New(fields...)
	for _, r := range rows {
		values := make([]table.Value, len(r))
		for i, raw := range r {
			values[i] = table.Infer(raw)
		}

		ds.Append(values...)
	}

	return ds
}

func TestAnalyzeEmptyDataset(t *testing.T) {
	s := quietAnalyzer().Analyze(table.New())
	assert.Empty(t, s.Profiles)
	assert.Zero(t, s.RowCount)
	assert.Equal(t, LayoutNone, s.Layout)

	s = quietAnalyzer().Analyze(nil)
	assert.Empty(t, s.Profiles)
}

func TestInferTypes(t *testing.T) {
	ds := dataset(
		[]string{"Int", "Float", "Text", "When", "Blank"},
		[]string{"1", "1.5", "a", "2024-01-02", ""},
		[]string{"2", "2", "b", "2024-02-03", ""},
		[]string{"", "3.25", "1", "03/04/2024", ""},
	)

	profiles := quietAnalyzer().Profiles(ds)
	require.Len(t, profiles, 5)

	tests := []struct {
		idx      int
		expected ValueType
	}{
		{0, TypeInteger},
		{1, TypeFloat},
		{2, TypeString},
		{3, TypeDatetime},
		{4, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(profiles[tt.idx].Name, func(t *testing.T) {
			assert.Equal(t, tt.expected, profiles[tt.idx].Type)
		})
	}

	intProfile := profiles[0]
	assert.InDelta(t, 1.0/3.0, intProfile.NullRatio, 1e-9)
	assert.True(t, intProfile.HasStats)
	assert.InDelta(t, 1.0, intProfile.Min, 1e-9)
	assert.InDelta(t, 2.0, intProfile.Max, 1e-9)
	assert.InDelta(t, 1.5, intProfile.Mean, 1e-9)
	assert.InDelta(t, 1.0, profiles[4].NullRatio, 1e-9)
}

func TestSamplesAreFirstDistinct(t *testing.T) {
	ds := dataset([]string{"Coverage"},
		[]string{"Basic"}, []string{"Basic"}, []string{""}, []string{"Gold"},
		[]string{"Silver"}, []string{"Plus"}, []string{"Max"}, []string{"Extra"},
	)

	p := quietAnalyzer().Profiles(ds)[0]
	assert.Equal(t, 6, p.Distinct)
	require.Len(t, p.Samples, MaxSamples)

	var got []string
	for _, v := range p.Samples {
		got = append(got, v.Text())
	}

	assert.Equal(t, []string{"Basic", "Gold", "Silver", "Plus", "Max"}, got)
}

func TestNameTags(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Coverage", TagCoverage},
		{"Term", TagTerm},
		{"Miles", TagMileage},
		{"Total Miles", TagMileage},
		{"FromMiles", TagFromMiles},
		{"from_miles", TagFromMiles},
		{"To Miles", TagToMiles},
		{"MaxMiles", TagToMiles},
		{"MinYear", TagMinYear},
		{"Max Years", TagMaxYears},
		{"Vehicle Class", TagClass},
		{"Deductible", TagDeductible},
		{"Dealer Cost", TagRateCost},
		{"RateCost", TagRateCost},
		{"RateCardCode", ""},
		{"Markup", ""},
	}

	a := quietAnalyzer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.tagByName(tt.name))
		})
	}
}

func TestValueTags(t *testing.T) {
	ds := dataset(
		[]string{"Yr", "Band", "Tier", "Months", "Amount", "Qty"},
		[]string{"2018", "12000", "0", "12", "10.5", "0"},
		[]string{"2020", "24000", "100", "24", "99", "1000"},
		[]string{"2022", "36000", "500", "36", "12", "5000"},
	)

	s := quietAnalyzer().Analyze(ds)

	expected := map[string]string{
		"Yr":     TagYear,
		"Band":   TagMileage,
		"Tier":   TagDeductible,
		"Months": TagTerm,
		"Amount": "",
		"Qty":    "",
	}

	for field, tag := range expected {
		p, ok := s.Profile(field)
		require.True(t, ok, field)
		assert.Equal(t, tag, p.Tag, field)
	}

	assert.Equal(t, LayoutUnpivoted, s.Layout)
	assert.Equal(t, []string{"Tier"}, s.Tagged(TagDeductible))
}

func TestFieldFailureIsIsolated(t *testing.T) {
	a := quietAnalyzer()
	a.valueRules = []valueRule{{"boom", func(ValueType, []float64) bool { panic("bad column") }}}

	ds := dataset([]string{"Name", "Amount"},
		[]string{"x", "1"},
		[]string{"y", "2"},
	)

	s := a.Analyze(ds)
	require.Len(t, s.Profiles, 2)

	name, _ := s.Profile("Name")
	assert.False(t, name.Failed())
	assert.Equal(t, TypeString, name.Type)

	amount, _ := s.Profile("Amount")
	assert.True(t, amount.Failed())
	assert.Equal(t, "bad column", amount.Err)
	assert.Equal(t, TypeFloat, amount.Type)

	require.True(t, s.Diagnostics.HasErrors())
	require.Len(t, s.Diagnostics.Errors, 1)
	assert.Equal(t, "Amount", s.Diagnostics.Errors[0].Field)
	assert.EqualError(t, s.Diagnostics.Error(), "Amount: [analyze_failed] bad column")
}

func TestPivotedLayout(t *testing.T) {
	ds := dataset([]string{"Coverage", "Deduct0", "Deductible 250", "deduct_100", "PlanDeduct"},
		[]string{"Basic", "10", "20", "30", "100"},
	)

	s := quietAnalyzer().Analyze(ds)
	assert.Equal(t, LayoutPivoted, s.Layout)
	assert.Equal(t, []TierField{
		{Field: "Deduct0", Tier: 0},
		{Field: "deduct_100", Tier: 100},
		{Field: "Deductible 250", Tier: 250},
	}, s.TierFields)
	assert.Equal(t, PurposeTemplate, s.Purpose)
}

func TestTierFromField(t *testing.T) {
	tests := []struct {
		name string
		tier int
		ok   bool
	}{
		{"Deduct100", 100, true},
		{"DEDUCTIBLE_50", 50, true},
		{"deduct 0", 0, true},
		{"PlanDeduct", 0, false},
		{"Deduct100Extra", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := TierFromField(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.tier, n)
		})
	}
}

func TestPotentialKeysAndPurpose(t *testing.T) {
	var rows [][]string
	for i := 0; i < 12; i++ {
		rows = append(rows, []string{string(rune('A' + i)), "Basic"})
	}

	s := quietAnalyzer().Analyze(dataset([]string{"ID", "Coverage"}, rows...))
	assert.Equal(t, []string{"ID"}, s.PotentialKeys)
	assert.Equal(t, PurposeData, s.Purpose)
	assert.Equal(t, 12, s.RowCount)
}

func TestSelectMainSheet(t *testing.T) {
	a := quietAnalyzer()

	notes := a.Analyze(dataset([]string{"Note"}, []string{"hello"}))
	rates := a.Analyze(dataset(
		[]string{"Coverage", "Term", "Miles", "Deductible", "Class", "RateCost"},
		[]string{"Basic", "12", "12000", "100", "A", "45"},
	))

	sheets := map[string]*Structure{"Notes": notes, "Dealer Cost Rates": rates}
	assert.Equal(t, "Dealer Cost Rates", SelectMainSheet(sheets, a.Logger))
	assert.Greater(t, SheetScore("Dealer Cost Rates", rates), SheetScore("Notes", notes))
	assert.Empty(t, SelectMainSheet(nil, a.Logger))
}
