package integrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratebridge/internal/table"
)

func pivoted() *table.Dataset {
	ds := table.New("Coverage", "Term", "PlanDeduct", "Deduct100")
	ds.Append(table.String("Basic"), table.Number(12), table.Number(100), table.Number(120))
	ds.Append(table.String("Premium"), table.Number(24), table.Number(100), table.Number(200.75))

	return ds
}

func TestMergeStructuralTemplate(t *testing.T) {
	dest := table.New("Dealer", "Term", "Coverage")
	dest.Append(table.String("placeholder"), table.Number(0), table.String("x"))

	res := Merge(pivoted(), dest, DefaultConfig())

	assert.Equal(t, ModeStructural, res.Mode)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, []string{"PlanDeduct", "Deduct100"}, res.Added)
	assert.Equal(t, []string{"Dealer", "Term", "Coverage", "PlanDeduct", "Deduct100"}, res.Dataset.Fields)
	require.Equal(t, 2, res.Dataset.Len())

	first := res.Dataset.Rows[0]
	assert.Equal(t, "Basic", first.Get("Coverage").Text())

	v, ok := first["Dealer"]
	assert.True(t, ok)
	assert.True(t, v.IsEmpty())
}

func TestMergeEmptyDestination(t *testing.T) {
	res := Merge(pivoted(), table.New(), DefaultConfig())

	assert.Equal(t, ModeStructural, res.Mode)
	assert.Equal(t, pivoted().Fields, res.Dataset.Fields)
	assert.Equal(t, 2, res.Dataset.Len())
}

func TestMergeLiveDataset(t *testing.T) {
	dest := table.New("Coverage", "Term", "Deduct100", "Note")
	for _, c := range []string{"Basic", "Gold", "Silver", "Bronze", "Iron"} {
		dest.Append(table.String(c), table.Number(12), table.Number(1), table.String("old"))
	}

	res := Merge(pivoted(), dest, DefaultConfig())

	assert.Equal(t, ModeLive, res.Mode)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, []string{"PlanDeduct"}, res.Added)
	require.Equal(t, 6, res.Dataset.Len())

	var basic []table.Row
	for _, r := range res.Dataset.Rows {
		if r.Get("Coverage").Text() == "Basic" {
			basic = append(basic, r)
		}
	}

	require.Len(t, basic, 1)
	assert.Equal(t, table.Number(120), basic[0].Get("Deduct100"))
	assert.True(t, basic[0].Get("Note").IsEmpty())

	assert.Equal(t, "Gold", res.Dataset.Rows[0].Get("Coverage").Text())
	assert.Equal(t, "Premium", res.Dataset.Rows[5].Get("Coverage").Text())
}

func TestMergeNormalizesNullText(t *testing.T) {
	tr := table.New("Coverage", "Class")
	tr.Append(table.String("Basic"), table.String("nan"))
	tr.Append(table.String("Plus"), table.String(" NULL "))
	tr.Append(table.String("Max"), table.String("<nil>"))
	tr.Append(table.String("Mid"), table.String("NaT"))

	res := Merge(tr, nil, DefaultConfig())
	for _, r := range res.Dataset.Rows {
		assert.True(t, r.Get("Class").IsEmpty(), r.Get("Coverage").Text())
	}
}

func TestMergeFallsBackWhenEmpty(t *testing.T) {
	tr := table.New("Coverage")
	dest := table.New("Coverage")
	dest.Append(table.String("placeholder"))

	res := Merge(tr, dest, DefaultConfig())

	assert.True(t, res.Degraded)
	assert.Equal(t, 0, res.Dataset.Len())
	assert.Equal(t, []string{"Coverage"}, res.Dataset.Fields)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	tr := pivoted()
	dest := table.New("Coverage")
	dest.Append(table.String("nan"))

	trBefore, destBefore := tr.Clone(), dest.Clone()
	Merge(tr, dest, DefaultConfig())

	assert.Equal(t, trBefore, tr)
	assert.Equal(t, destBefore, dest)
}

func TestIsNullText(t *testing.T) {
	for _, s := range []string{"", "  ", "nan", "NaN", "null", "NaT", "<nil>"} {
		assert.True(t, IsNullText(s), s)
	}

	for _, s := range []string{"0", "Basic", "nil", "n/a"} {
		assert.False(t, IsNullText(s), s)
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "structural", ModeStructural.String())
	assert.Equal(t, "live", ModeLive.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
