package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ratebridge/internal/analyze"
	"ratebridge/internal/cache"
	"ratebridge/internal/config"
	"ratebridge/internal/diagnostic"
	"ratebridge/internal/integrate"
	"ratebridge/internal/logging"
	"ratebridge/internal/mapping"
	"ratebridge/internal/pivot"
	"ratebridge/internal/plan"
	"ratebridge/internal/table"
)

// Options wires the collaborators of a Runner.
type Options struct {
	Loader Loader
	Saver  Saver
	// Prompter nil means low-confidence mappings are used as resolved.
	Prompter Prompter
	// Store nil means an in-memory store.
	Store cache.Store
}

// Runner executes conversions. It keeps no state between runs apart from
// the mapping store.
type Runner struct {
	loader   Loader
	saver    Saver
	prompter Prompter
	store    cache.Store

	resolver            *plan.Resolver
	pivotConfig         pivot.Config
	mergeConfig         integrate.Config
	templateRows        int
	confidenceThreshold int
	minResolved         int
	useSaved            bool
}

// New builds a Runner from validated configuration.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	if opts.Loader == nil {
		return nil, errors.New("pipeline: a loader is required")
	}

	rc, err := cfg.ResolverConfig()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	pc, err := cfg.PivotConfig()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	store := opts.Store
	if store == nil {
		store = cache.NewMemoryStore(cache.Options{})
	}

	return &Runner{
		loader:              opts.Loader,
		saver:               opts.Saver,
		prompter:            opts.Prompter,
		store:               store,
		resolver:            plan.NewResolver(rc),
		pivotConfig:         pc,
		mergeConfig:         cfg.MergeConfig(),
		templateRows:        cfg.Template.RowThreshold,
		confidenceThreshold: cfg.Mapping.ConfidenceThreshold,
		minResolved:         cfg.Mapping.MinResolvedFields,
		useSaved:            cfg.Store.UseSaved,
	}, nil
}

// Store returns the mapping store.
func (r *Runner) Store() cache.Store { return r.store }

// Start runs req on a new goroutine. The channel receives exactly one
// Outcome and is then closed.
func (r *Runner) Start(ctx context.Context, req Request) <-chan Outcome {
	out := make(chan Outcome, 1)

	go func() {
		defer close(out)

		report, err := r.Run(ctx, req)
		out <- Outcome{Report: report, Err: err}
	}()

	return out
}

// Suggest analyzes the source and resolves a mapping without prompting,
// transforming or writing anything.
func (r *Runner) Suggest(ctx context.Context, req Request) (*Report, error) {
	ctx, logger := r.runContext(ctx, req)

	report, src, err := r.loadSource(ctx, logger, req)
	if err != nil {
		return report, err
	}

	dest, err := r.loadDestination(req)
	if err != nil {
		return report, err
	}

	schema := mapping.DeriveSchema(dest.Fields)
	report.Plan = r.resolver.Resolve(report.Structure, schema)
	report.Diagnostics.Merge(report.Plan.Diagnostics)
	report.Mapping = report.Plan.Mapping
	report.Origin = OriginResolved

	_, report.Cached = r.store.Get(ctx, report.Signature)

	logger.Info("suggested mapping",
		slog.Int("mapped", report.Mapping.Len()),
		slog.Int("unmapped", len(report.Plan.Unmapped)),
		slog.Int("rows", src.Len()),
	)

	return report, nil
}

// Run performs a full conversion.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	ctx, logger := r.runContext(ctx, req)
	logger.Info("run started")

	report, src, err := r.loadSource(ctx, logger, req)
	if err != nil {
		return report, err
	}

	dest, err := r.loadDestination(req)
	if err != nil {
		return report, err
	}

	schema := mapping.DeriveSchema(dest.Fields)

	m, err := r.chooseMapping(ctx, logger, req, report, src, schema)
	if err != nil {
		return report, err
	}

	if resolved := m.Count(mapping.PivotFields...); resolved < r.minResolved {
		rows, cols := src.Shape()

		return report, &diagnostic.SchemaError{
			Rule:    "min-resolved-fields",
			Fields:  missingTargets(m, schema),
			Rows:    rows,
			Columns: cols,
			Detail:  fmt.Sprintf("%d canonical fields resolved, %d required", resolved, r.minResolved),
		}
	}

	engine := pivot.NewEngine(r.pivotConfig, logger)
	groupFields := r.pivotConfig.GroupFields(schema)

	if tiers := report.Structure.TierFields; len(tiers) > 0 && m.Source(mapping.FieldDeductible) == "" {
		passthrough := make([]string, len(tiers))
		for i, tf := range tiers {
			passthrough[i] = tf.Field
		}

		report.Mapping = m
		report.Pivot = engine.Widen(m.Apply(src, passthrough...), tiers, groupFields)
	} else {
		m, err = r.detectPivotFields(src, report.Structure, m)
		if err != nil {
			return report, err
		}

		m = m.Claim(r.pivotConfig.TierField, r.pivotConfig.ValueField)
		report.Mapping = m

		report.Pivot, err = engine.Pivot(m.Apply(src), groupFields)
		if err != nil {
			return report, err
		}
	}

	mc := r.mergeConfig
	mc.Logger = logger
	report.Integration = integrate.Merge(report.Pivot.Dataset, dest, mc)
	report.Output = report.Integration.Dataset

	if report.Output.Len() == 0 {
		rows, cols := src.Shape()

		return report, fmt.Errorf("%w: %w", ErrNoData, &diagnostic.SchemaError{
			Rule:    "no-rows",
			Fields:  report.Output.Fields,
			Rows:    rows,
			Columns: cols,
			Detail:  "every stage came out empty",
		})
	}

	if req.OutputPath != "" {
		if r.saver == nil {
			return report, errors.New("pipeline: an output path was given but no saver is configured")
		}

		sheet := req.OutputSheet
		if sheet == "" {
			sheet = req.TemplateSheet
		}

		if err := r.saver.Save(report.Output, req.OutputPath, sheet); err != nil {
			return report, fmt.Errorf("save output: %w", err)
		}

		report.OutputPath = req.OutputPath
	}

	r.store.Put(ctx, report.Signature, m, req.MappingName)

	logger.Info("run complete",
		slog.String("origin", report.Origin.String()),
		slog.Int("rows", report.Output.Len()),
		slog.Int("fields", len(report.Output.Fields)),
		slog.Bool("pivot_degraded", report.Pivot.Degraded),
		slog.Bool("integration_degraded", report.Integration.Degraded),
	)

	return report, nil
}

func (r *Runner) runContext(ctx context.Context, req Request) (context.Context, *slog.Logger) {
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, logging.NewRunID())
	}

	return ctx, logging.WithFields(ctx, "source", req.SourcePath)
}

func (r *Runner) analyzer(logger *slog.Logger) *analyze.Analyzer {
	a := analyze.NewAnalyzer()
	a.Logger = logger

	if r.templateRows > 0 {
		a.TemplateRowThreshold = r.templateRows
	}

	return a
}

// loadSource loads the source sheet, picking the main sheet when none is
// named, and analyzes it.
func (r *Runner) loadSource(ctx context.Context, logger *slog.Logger, req Request) (*Report, *table.Dataset, error) {
	report := &Report{RunID: logging.RunID(ctx)}
	a := r.analyzer(logger)

	sheet := req.SourceSheet

	var (
		src       *table.Dataset
		structure *analyze.Structure
	)

	if sheet == "" {
		names, err := r.loader.SheetNames(req.SourcePath)
		if err != nil {
			return report, nil, fmt.Errorf("%w: source %s: %w", ErrNoDataset, req.SourcePath, err)
		}

		if len(names) == 0 {
			return report, nil, fmt.Errorf("%w: source %s has no sheets", ErrNoDataset, req.SourcePath)
		}

		loaded := make(map[string]*table.Dataset, len(names))
		structures := make(map[string]*analyze.Structure, len(names))

		for _, name := range names {
			ds, err := r.loader.Load(req.SourcePath, name)
			if err != nil {
				logger.Warn("skipping unreadable sheet", slog.String("sheet", name), slog.String("error", err.Error()))

				continue
			}

			loaded[name] = ds
			structures[name] = a.Analyze(ds)
		}

		sheet = analyze.SelectMainSheet(structures, logger)
		if sheet == "" {
			sheet = names[0]
		}

		src, structure = loaded[sheet], structures[sheet]
		if src == nil {
			return report, nil, fmt.Errorf("%w: sheet %q of %s could not be read", ErrNoDataset, sheet, req.SourcePath)
		}
	} else {
		ds, err := r.loader.Load(req.SourcePath, sheet)
		if err != nil {
			return report, nil, fmt.Errorf("%w: source %s: %w", ErrNoDataset, req.SourcePath, err)
		}

		src, structure = ds, a.Analyze(ds)
	}

	if len(src.Fields) == 0 {
		return report, nil, fmt.Errorf("%w: sheet %q of %s is empty", ErrNoDataset, sheet, req.SourcePath)
	}

	report.Sheet = sheet
	report.Structure = structure
	report.Diagnostics.Merge(structure.Diagnostics)
	report.Signature = cache.Signature(structure.Profiles)

	logger.Info("source analyzed",
		slog.String("sheet", sheet),
		slog.Int("rows", structure.RowCount),
		slog.Int("fields", len(structure.Fields)),
		slog.String("layout", structure.Layout.String()),
	)

	return report, src, nil
}

func (r *Runner) loadDestination(req Request) (*table.Dataset, error) {
	if req.TemplatePath == "" {
		return table.New(), nil
	}

	ds, err := r.loader.Load(req.TemplatePath, req.TemplateSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: template %s: %w", ErrNoDataset, req.TemplatePath, err)
	}

	return ds, nil
}

// chooseMapping recalls a saved mapping or resolves a fresh one, prompting
// when the fresh one is not confident enough.
func (r *Runner) chooseMapping(
	ctx context.Context,
	logger *slog.Logger,
	req Request,
	report *Report,
	src *table.Dataset,
	schema mapping.Schema,
) (mapping.FieldMapping, error) {
	if m, origin, ok := r.recall(ctx, logger, req.MappingName, report.Signature, src); ok {
		report.Origin = origin
		report.Cached = origin == OriginCached

		return m, nil
	}

	p := r.resolver.Resolve(report.Structure, schema)
	report.Plan = p
	report.Diagnostics.Merge(p.Diagnostics)
	report.Origin = OriginResolved

	for _, d := range p.Diagnostics.Warnings {
		logger.Warn(d.Message, slog.String("code", d.Code), slog.String("field", d.Field))
	}

	m := p.Mapping

	if !p.NeedsReview(r.confidenceThreshold) {
		return m, nil
	}

	logger.Info("mapping needs review",
		slog.Int("lowest_confidence", m.Lowest()),
		slog.Int("threshold", r.confidenceThreshold),
	)

	if r.prompter == nil {
		return m, nil
	}

	confirmed, err := r.prompter.PromptForMapping(ctx, src.Fields, m, p.Required())
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			logger.Info("mapping cancelled")

			return mapping.FieldMapping{}, ErrCancelled
		}

		return mapping.FieldMapping{}, fmt.Errorf("prompt: %w", err)
	}

	if err := confirmed.Validate(src.Fields); err != nil {
		return mapping.FieldMapping{}, err
	}

	report.Origin = OriginManual

	return confirmed, nil
}

// recall looks up the named template, then the signature. Assignments whose
// source is gone are dropped.
func (r *Runner) recall(
	ctx context.Context,
	logger *slog.Logger,
	name, signature string,
	src *table.Dataset,
) (mapping.FieldMapping, Origin, bool) {
	var (
		rec    cache.Record
		origin Origin
		found  bool
	)

	if name != "" {
		rec, found = r.store.Template(ctx, name)
		origin = OriginTemplate

		if !found {
			logger.Info("no saved template with that name", slog.String("name", name))
		}
	}

	if !found && r.useSaved {
		rec, found = r.store.Get(ctx, signature)
		origin = OriginCached
	}

	if !found {
		return mapping.FieldMapping{}, 0, false
	}

	m := rec.FieldMapping()
	kept := m.Restrict(src.Fields)

	if kept.Len() < m.Len() {
		logger.Warn("saved mapping refers to missing fields",
			slog.Int("dropped", m.Len()-kept.Len()),
			slog.String("record", rec.ID))
	}

	if kept.IsEmpty() {
		return mapping.FieldMapping{}, 0, false
	}

	logger.Info("using saved mapping", slog.String("origin", origin.String()), slog.String("record", rec.ID))

	return kept, origin, true
}

// detectPivotFields fills the tier and value assignments the mapping lacks.
func (r *Runner) detectPivotFields(src *table.Dataset, s *analyze.Structure, m mapping.FieldMapping) (mapping.FieldMapping, error) {
	have := pivot.Detection{
		Tier:  m.Source(r.pivotConfig.TierField),
		Value: m.Source(r.pivotConfig.ValueField),
	}

	if have.Tier != "" && have.Value != "" {
		return m, nil
	}

	claimed := make([]string, 0, m.Len())
	for _, t := range m.Targets() {
		claimed = append(claimed, m.Source(t))
	}

	claimed = append(claimed, s.Tagged(analyze.TagYear)...)

	det, err := pivot.DetectColumns(src, s.Profiles, claimed, have, r.pivotConfig)
	if err != nil {
		return m, err
	}

	if have.Tier == "" {
		m = m.With(r.pivotConfig.TierField, mapping.Assignment{
			Source: det.Tier, Confidence: plan.ConfidenceContent, Reason: mapping.ReasonDetected,
		})
	}

	if have.Value == "" {
		m = m.With(r.pivotConfig.ValueField, mapping.Assignment{
			Source: det.Value, Confidence: plan.ConfidenceContent, Reason: mapping.ReasonDetected,
		})
	}

	return m, nil
}

// missingTargets lists the non-pivot schema fields m leaves unassigned.
func missingTargets(m mapping.FieldMapping, schema mapping.Schema) []string {
	var out []string

	for _, f := range schema.Without(mapping.PivotFields...) {
		if m.Source(f) == "" {
			out = append(out, f)
		}
	}

	return out
}
