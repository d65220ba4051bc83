package sheetio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ratebridge/internal/table"
)

var (
	// ErrSheetNotFound is returned when a named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrUnsupportedFormat is returned for extensions other than .xlsx,
	// .xlsm and .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

type format int

const (
	formatXLSX format = iota
	formatCSV
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return formatXLSX, nil
	case ".csv":
		return formatCSV, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Workbook reads and writes spreadsheet files.
type Workbook struct{}

// NewWorkbook creates a Workbook.
func NewWorkbook() *Workbook { return &Workbook{} }

// SheetNames lists the sheets of path. A CSV file has one sheet named after
// the file.
func (w *Workbook) SheetNames(path string) ([]string, error) {
	ft, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	if ft == formatCSV {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		return []string{csvSheetName(path)}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// Load reads one sheet. An empty sheet name means the first sheet. The
// sheet name is ignored for CSV files.
func (w *Workbook) Load(path, sheet string) (*table.Dataset, error) {
	ft, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	var records [][]string

	switch ft {
	case formatCSV:
		records, err = readCSV(path)
	default:
		records, err = readXLSX(path, sheet)
	}

	if err != nil {
		return nil, err
	}

	return FromRecords(records), nil
}

// Save writes ds to path. For workbooks an existing file keeps its other
// sheets and the named sheet is replaced.
func (w *Workbook) Save(ds *table.Dataset, path, sheet string) error {
	ft, err := formatOf(path)
	if err != nil {
		return err
	}

	if ft == formatCSV {
		return writeCSV(ds, path)
	}

	if sheet == "" {
		sheet = "Sheet1"
	}

	return writeXLSX(ds, path, sheet)
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrSheetNotFound, path)
		}

		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return rows, nil
}

func writeXLSX(ds *table.Dataset, path, sheet string) error {
	f, fresh, err := openOrCreate(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := replaceSheet(f, sheet, fresh); err != nil {
		return err
	}

	header := make([]any, len(ds.Fields))
	for i, name := range ds.Fields {
		header[i] = name
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range ds.Rows {
		cells := make([]any, len(ds.Fields))
		for j, name := range ds.Fields {
			cells[j] = row.Get(name).Any()
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}

func openOrCreate(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return f, false, nil
}

// replaceSheet leaves an empty sheet named sheet in f, dropping any previous
// content, and makes it active. The default sheet of a fresh workbook is
// dropped when another name is requested.
func replaceSheet(f *excelize.File, sheet string, fresh bool) error {
	var drop []string

	if slices.Contains(f.GetSheetList(), sheet) {
		old := sheet + "~old"
		if err := f.SetSheetName(sheet, old); err != nil {
			return fmt.Errorf("failed to rename sheet %q: %w", sheet, err)
		}

		drop = append(drop, old)
	} else if fresh {
		drop = f.GetSheetList()
	}

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	for _, name := range drop {
		if err := f.DeleteSheet(name); err != nil {
			return fmt.Errorf("failed to drop sheet %q: %w", name, err)
		}
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to locate sheet %q: %w", sheet, err)
	}

	f.SetActiveSheet(idx)

	return nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	return records, nil
}

func writeCSV(ds *table.Dataset, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(file)

	if err := w.Write(ds.Fields); err != nil {
		file.Close()

		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(ds.Fields))
	for _, row := range ds.Rows {
		for i, name := range ds.Fields {
			record[i] = row.Get(name).Text()
		}

		if err := w.Write(record); err != nil {
			file.Close()

			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		file.Close()

		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return file.Close()
}

func csvSheetName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FromRecords builds a dataset from raw rows. Leading blank rows are
// skipped, the next row is the header, and fully blank data rows are
// dropped.
func FromRecords(records [][]string) *table.Dataset {
	for len(records) > 0 && isBlank(records[0]) {
		records = records[1:]
	}

	if len(records) == 0 {
		return table.New()
	}

	width := 0
	for _, r := range records {
		width = max(width, len(r))
	}

	ds := table.New(NormalizeHeaders(records[0], width)...)

	for _, r := range records[1:] {
		if isBlank(r) {
			continue
		}

		values := make([]table.Value, len(r))
		for i, cell := range r {
			values[i] = table.Infer(cell)
		}

		ds.Append(values...)
	}

	return ds
}

// NormalizeHeaders pads header to width and makes every name unique.
func NormalizeHeaders(header []string, width int) []string {
	out := make([]string, max(width, len(header)))
	used := make(map[string]bool, len(out))
	suffix := make(map[string]int)

	for i := range out {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}

		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		for base := name; used[name]; {
			suffix[base]++
			name = base + "." + strconv.Itoa(suffix[base])
		}

		used[name] = true
		out[i] = name
	}

	return out
}

func isBlank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
