package pivot

import (
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"ratebridge/internal/analyze"
	"ratebridge/internal/diagnostic"
	"ratebridge/internal/table"
)

// Result is the output of a pivot or widen run.
type Result struct {
	// Dataset is the wide output, or the input rows when Degraded.
	Dataset *table.Dataset
	// Aggregates is the number of wide rows produced.
	Aggregates int
	// Skipped counts input rows dropped for an unusable tier or value.
	Skipped int
	// Tiers lists the emitted tier numbers, ascending.
	Tiers []int
	// Degraded is set when no aggregate row was produced and the input rows
	// were returned instead.
	Degraded bool
}

// Engine pivots mapped datasets.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger means slog.Default().
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{cfg: cfg, logger: logger}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

type aggregate struct {
	key   table.Row
	tiers map[int]table.Value
}

// Pivot folds narrow rows of ds into one row per grouping key. For each
// (key, tier) pair the last row wins. Rows with an unusable tier or a
// non-numeric value are skipped. When no row survives, the input is
// returned unchanged and the result is marked degraded.
func (e *Engine) Pivot(ds *table.Dataset, groupFields []string) (*Result, error) {
	if err := e.requireFields(ds); err != nil {
		return nil, err
	}

	var (
		order   []string
		aggs    = make(map[string]*aggregate)
		seen    = make(map[int]bool)
		skipped int
	)

	for i, row := range ds.Rows {
		tier, ok := ParseTier(row.Get(e.cfg.TierField))
		if !ok {
			skipped++
			e.logger.Debug("skipped row: unusable tier",
				slog.Int("row", i+1), slog.String("tier", row.Get(e.cfg.TierField).Text()))

			continue
		}

		value, ok := row.Get(e.cfg.ValueField).Float()
		if !ok {
			skipped++
			e.logger.Debug("skipped row: non-numeric value",
				slog.Int("row", i+1), slog.String("value", row.Get(e.cfg.ValueField).Text()))

			continue
		}

		key := row.Key(groupFields)

		agg, ok := aggs[key]
		if !ok {
			agg = &aggregate{key: make(table.Row, len(groupFields)), tiers: make(map[int]table.Value)}
			for _, f := range groupFields {
				agg.key[f] = row.Get(f)
			}

			aggs[key] = agg
			order = append(order, key)
		}

		agg.tiers[tier] = table.Number(value)
		seen[tier] = true
	}

	if skipped > 0 {
		e.logger.Warn("rows skipped during pivot", slog.Int("skipped", skipped), slog.Int("rows", ds.Len()))
	}

	if len(order) == 0 {
		e.logger.Warn("pivot produced no rows, returning mapped rows unchanged", slog.Int("rows", ds.Len()))

		return &Result{Dataset: ds.Clone(), Skipped: skipped, Degraded: true}, nil
	}

	tiers := e.tierList(seen)
	out := table.New(e.outputFields(groupFields, tiers)...)
	out.Rows = make([]table.Row, 0, len(order))

	for _, key := range order {
		agg := aggs[key]
		out.Rows = append(out.Rows, e.emit(agg.key, agg.tiers, groupFields, tiers))
	}

	e.logger.Info("pivot complete",
		slog.Int("input_rows", ds.Len()),
		slog.Int("aggregates", len(order)),
		slog.Int("tiers", len(tiers)),
	)

	return &Result{Dataset: out, Aggregates: len(order), Skipped: skipped, Tiers: tiers}, nil
}

// Widen handles sources whose tiers are already columns: the tier columns
// are renamed to Deduct<N>, standard tiers are filled and the primary tier
// is derived. Rows are not aggregated.
func (e *Engine) Widen(ds *table.Dataset, tierFields []analyze.TierField, groupFields []string) *Result {
	seen := make(map[int]bool, len(tierFields))
	for _, tf := range tierFields {
		seen[tf.Tier] = true
	}

	if ds.Len() == 0 {
		e.logger.Warn("widen got no rows, returning input unchanged")

		return &Result{Dataset: ds.Clone(), Degraded: true}
	}

	tiers := e.tierList(seen)
	out := table.New(e.outputFields(groupFields, tiers)...)
	out.Rows = make([]table.Row, 0, ds.Len())

	for _, row := range ds.Rows {
		values := make(map[int]table.Value, len(tierFields))
		for _, tf := range tierFields {
			if f, ok := row.Get(tf.Field).Float(); ok {
				values[tf.Tier] = table.Number(f)
			}
		}

		out.Rows = append(out.Rows, e.emit(row, values, groupFields, tiers))
	}

	return &Result{Dataset: out, Aggregates: out.Len(), Tiers: tiers}
}

func (e *Engine) requireFields(ds *table.Dataset) error {
	var missing []string

	for _, f := range []string{e.cfg.TierField, e.cfg.ValueField} {
		if !ds.HasField(f) {
			missing = append(missing, f)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	rows, cols := ds.Shape()

	return &diagnostic.SchemaError{
		Rule:    "pivot-fields",
		Fields:  missing,
		Rows:    rows,
		Columns: cols,
		Detail:  "mapped dataset lacks the tier/value fields",
	}
}

// emit builds one output row from grouping values and tier values.
func (e *Engine) emit(key table.Row, values map[int]table.Value, groupFields []string, tiers []int) table.Row {
	row := make(table.Row, len(groupFields)+len(tiers)+1)

	for _, f := range groupFields {
		row[f] = key.Get(f)
	}

	for _, t := range tiers {
		row[e.cfg.TierColumn(t)] = values[t].Round2()
	}

	row[e.cfg.PrimaryField] = table.Empty()
	if tier, ok := e.cfg.Policy.Select(values, key.Get(e.cfg.ClassField)); ok {
		row[e.cfg.PrimaryField] = table.Number(float64(tier))
	}

	return row
}

// tierList merges seen tiers with the standard tiers, ascending.
func (e *Engine) tierList(seen map[int]bool) []int {
	tiers := slices.Clone(e.cfg.StandardTiers)
	for t := range seen {
		tiers = append(tiers, t)
	}

	slices.Sort(tiers)

	return slices.Compact(tiers)
}

// outputFields orders identity fields, the primary field, tier columns
// ascending, then the remaining grouping fields.
func (e *Engine) outputFields(groupFields []string, tiers []int) []string {
	fields := make([]string, 0, len(groupFields)+len(tiers)+1)

	for _, f := range e.cfg.IdentityFields {
		if slices.Contains(groupFields, f) {
			fields = append(fields, f)
		}
	}

	fields = append(fields, e.cfg.PrimaryField)

	for _, t := range tiers {
		fields = append(fields, e.cfg.TierColumn(t))
	}

	for _, f := range groupFields {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}

	return fields
}

// ParseTier reads a tier number. Numeric values are used directly
// ("100.00" is 100); other text keeps only its digits ("$250 ded" is 250).
// Empty values and text without digits are not tiers.
func ParseTier(v table.Value) (int, bool) {
	if v.IsEmpty() {
		return 0, false
	}

	if f, ok := v.Float(); ok {
		if f < 0 {
			return 0, false
		}

		return int(math.Round(f)), true
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}

		return -1
	}, v.Text())

	if digits == "" {
		return 0, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return n, true
}
