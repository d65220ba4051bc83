package table

import (
	"slices"
	"strconv"
	"strings"
)

// Row maps field names to cell values. A field absent from the map reads as
// Empty.
type Row map[string]Value

// Get returns the value of field, or Empty when absent.
func (r Row) Get(field string) Value {
	return r[field]
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}

// Key encodes the text of fields as one comparable string, an absent or
// empty value reading as "". Each text is written as "<byte length>:<text>",
// so no cell content can forge a field boundary.
func (r Row) Key(fields []string) string {
	var b strings.Builder

	for _, f := range fields {
		text := r.Get(f).Text()

		b.WriteString(strconv.Itoa(len(text)))
		b.WriteByte(':')
		b.WriteString(text)
	}

	return b.String()
}

// Dataset is an ordered list of fields plus rows.
type Dataset struct {
	Fields []string
	Rows   []Row
}

// New returns a dataset with the given fields and no rows.
func New(fields ...string) *Dataset {
	return &Dataset{Fields: slices.Clone(fields)}
}

// Append adds a row built from positional values matching Fields.
// Missing trailing values read as Empty.
func (d *Dataset) Append(values ...Value) {
	row := make(Row, len(d.Fields))
	for i, f := range d.Fields {
		if i < len(values) {
			row[f] = values[i]
		} else {
			row[f] = Value{}
		}
	}

	d.Rows = append(d.Rows, row)
}

// Len returns the row count.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}

	return len(d.Rows)
}

// Shape returns (rows, columns).
func (d *Dataset) Shape() (int, int) {
	if d == nil {
		return 0, 0
	}

	return len(d.Rows), len(d.Fields)
}

// HasField reports whether name is one of the dataset fields.
func (d *Dataset) HasField(name string) bool {
	return d != nil && slices.Contains(d.Fields, name)
}

// Column returns the values of one field in row order.
func (d *Dataset) Column(name string) []Value {
	out := make([]Value, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Get(name)
	}

	return out
}

// Clone returns a deep copy of the dataset (rows are copied, values are
// immutable).
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}

	out := &Dataset{
		Fields: slices.Clone(d.Fields),
		Rows:   make([]Row, len(d.Rows)),
	}
	for i, r := range d.Rows {
		out.Rows[i] = r.Clone()
	}

	return out
}
