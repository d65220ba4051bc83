package integrate

import (
	"log/slog"
	"slices"
	"strings"

	"ratebridge/internal/common"
	"ratebridge/internal/mapping"
	"ratebridge/internal/table"
)

// Mode is how a destination was treated.
type Mode int

const (
	ModeStructural Mode = iota // destination rows were placeholders
	ModeLive                   // destination rows were kept and deduplicated
)

// String returns a human-readable representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeStructural:
		return "structural"
	case ModeLive:
		return "live"
	default:
		return common.UnknownStr
	}
}

// Config controls Merge.
type Config struct {
	// TemplateRowThreshold: destinations with fewer rows are structural.
	TemplateRowThreshold int
	// KeyFields identify a row in live mode. Only fields present in the
	// merged result take part.
	KeyFields []string
	Logger    *slog.Logger
}

// DefaultConfig returns the standard merge configuration.
func DefaultConfig() Config {
	return Config{
		TemplateRowThreshold: 5,
		KeyFields: []string{
			mapping.FieldCoverage,
			mapping.FieldTerm,
			mapping.FieldMiles,
			mapping.FieldFromMiles,
			mapping.FieldToMiles,
			mapping.FieldClass,
			mapping.FieldDeductible,
		},
	}
}

// Result is the outcome of Merge.
type Result struct {
	Dataset *table.Dataset
	Mode    Mode
	// Added lists transformed fields missing from the destination.
	Added []string
	// Dropped counts discarded placeholder rows.
	Dropped int
	// Duplicates counts destination rows replaced by transformed rows.
	Duplicates int
	// Degraded is set when the merge came out empty and the transformed
	// rows were returned instead.
	Degraded bool
}

// Merge combines transformed rows with the destination. Neither input is
// modified. All empty-looking cells in the result are normalised to Empty.
func Merge(transformed, destination *table.Dataset, cfg Config) *Result {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if destination == nil {
		destination = table.New()
	}

	var added []string

	for _, f := range transformed.Fields {
		if !slices.Contains(destination.Fields, f) {
			added = append(added, f)
		}
	}

	if len(added) > 0 {
		logger.Info("adding fields missing from destination", slog.Any("fields", added))
	}

	fields := append(slices.Clone(destination.Fields), added...)
	res := &Result{Added: added}

	var rows []table.Row

	if destination.Len() < cfg.TemplateRowThreshold {
		res.Mode = ModeStructural
		res.Dropped = destination.Len()
		rows = transformed.Rows

		logger.Info("destination is a structural template",
			slog.Int("placeholder_rows", res.Dropped))
	} else {
		res.Mode = ModeLive
		rows = append(slices.Clone(destination.Rows), transformed.Rows...)

		keys := presentKeys(cfg.KeyFields, fields)
		if len(keys) > 0 {
			before := len(rows)
			rows = dedupeKeepLast(rows, keys)
			res.Duplicates = before - len(rows)
		}

		logger.Info("appended to live destination",
			slog.Int("existing_rows", destination.Len()),
			slog.Int("duplicates_removed", res.Duplicates))
	}

	out := table.New(fields...)
	out.Rows = make([]table.Row, 0, len(rows))

	for _, r := range rows {
		out.Rows = append(out.Rows, normalizeRow(r, fields))
	}

	if out.Len() == 0 {
		logger.Warn("integration produced no rows, returning transformed rows",
			slog.Int("transformed_rows", transformed.Len()))

		res.Dataset = Normalize(transformed)
		res.Degraded = true

		return res
	}

	res.Dataset = out

	logger.Info("integration complete",
		slog.String("mode", res.Mode.String()),
		slog.Int("rows", out.Len()),
		slog.Int("fields", len(fields)))

	return res
}

// Normalize returns a copy of ds with empty-looking cells set to Empty.
func Normalize(ds *table.Dataset) *table.Dataset {
	out := table.New(ds.Fields...)
	out.Rows = make([]table.Row, 0, ds.Len())

	for _, r := range ds.Rows {
		out.Rows = append(out.Rows, normalizeRow(r, ds.Fields))
	}

	return out
}

// IsNullText reports whether s is blank or a textual null marker.
func IsNullText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "null", "nat", "<nil>":
		return true
	default:
		return false
	}
}

func normalizeRow(r table.Row, fields []string) table.Row {
	out := make(table.Row, len(fields))

	for _, f := range fields {
		v := r.Get(f)
		if v.Kind() == table.KindString && IsNullText(v.Text()) {
			v = table.Empty()
		}

		out[f] = v
	}

	return out
}

func presentKeys(keys, fields []string) []string {
	var out []string

	for _, k := range keys {
		if slices.Contains(fields, k) {
			out = append(out, k)
		}
	}

	return out
}

// dedupeKeepLast keeps the last row of each key at its position.
func dedupeKeepLast(rows []table.Row, keys []string) []table.Row {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[normalizeRow(r, keys).Key(keys)] = i
	}

	out := make([]table.Row, 0, len(last))

	for i, r := range rows {
		if last[normalizeRow(r, keys).Key(keys)] == i {
			out = append(out, r)
		}
	}

	return out
}
