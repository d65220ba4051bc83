package sheetio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratebridge/internal/table"
)

func sample() *table.Dataset {
	ds := table.New("Coverage", "Term", "Code", "Deduct100")
	ds.Append(table.String("Basic"), table.Number(12), table.String("007"), table.Number(120.5))
	ds.Append(table.String("Premium"), table.Number(24), table.Empty(), table.Empty())

	return ds
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWorkbook()

	require.NoError(t, w.Save(sample(), path, "Rates"))

	names, err := w.SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rates"}, names)

	got, err := w.Load(path, "Rates")
	require.NoError(t, err)
	assert.Equal(t, sample().Fields, got.Fields)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, table.Number(12), got.Rows[0].Get("Term"))
	assert.Equal(t, table.String("007"), got.Rows[0].Get("Code"))
	assert.Equal(t, table.Number(120.5), got.Rows[0].Get("Deduct100"))
	assert.True(t, got.Rows[1].Get("Deduct100").IsEmpty())
}

func TestXLSXReplaceKeepsOtherSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWorkbook()

	require.NoError(t, w.Save(sample(), path, "Rates"))
	require.NoError(t, w.Save(sample(), path, "Notes"))

	replacement := table.New("Only")
	replacement.Append(table.String("x"))
	require.NoError(t, w.Save(replacement, path, "Rates"))

	names, err := w.SheetNames(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Rates", "Notes"}, names)

	got, err := w.Load(path, "Rates")
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, got.Fields)
	assert.Equal(t, 1, got.Len())

	notes, err := w.Load(path, "")
	require.NoError(t, err)
	assert.NotEmpty(t, notes.Fields)
}

func TestXLSXMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWorkbook()
	require.NoError(t, w.Save(sample(), path, "Rates"))

	_, err := w.Load(path, "Nope")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.csv")
	w := NewWorkbook()

	require.NoError(t, w.Save(sample(), path, "ignored"))

	names, err := w.SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"rates"}, names)

	got, err := w.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestCSVHeaderCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	data := "\ufeffCoverage,,Rate,Rate\nBasic,x,1,2\n,,,\nPlus,y,3\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	got, err := NewWorkbook().Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Coverage", "Unnamed: 1", "Rate", "Rate.1"}, got.Fields)
	require.Equal(t, 2, got.Len())
	assert.True(t, got.Rows[1].Get("Rate.1").IsEmpty())
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := NewWorkbook().Load("rates.ods", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = NewWorkbook().Save(sample(), "rates.txt", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		width  int
		want   []string
	}{
		{"unique", []string{"A", "B"}, 2, []string{"A", "B"}},
		{"blank", []string{"A", " ", ""}, 3, []string{"A", "Unnamed: 1", "Unnamed: 2"}},
		{"padded", []string{"A"}, 3, []string{"A", "Unnamed: 1", "Unnamed: 2"}},
		{"duplicates", []string{"A", "A", "A"}, 3, []string{"A", "A.1", "A.2"}},
		{"suffix already taken", []string{"A", "A.1", "A"}, 3, []string{"A", "A.1", "A.2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeaders(tt.header, tt.width))
		})
	}
}

func TestFromRecords(t *testing.T) {
	ds := FromRecords([][]string{{"", ""}, {"Term", "Rate"}, {"12", "$1,000"}})

	assert.Equal(t, []string{"Term", "Rate"}, ds.Fields)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, table.Number(12), ds.Rows[0].Get("Term"))
	assert.Equal(t, table.String("$1,000"), ds.Rows[0].Get("Rate"))

	assert.Empty(t, FromRecords(nil).Fields)
}
