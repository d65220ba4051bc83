package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"

	"ratebridge/internal/cache"
	"ratebridge/internal/config"
	"ratebridge/internal/mapping"
	"ratebridge/internal/match"
	"ratebridge/internal/pipeline"
	"ratebridge/internal/plan"
	"ratebridge/internal/prompt"
	"ratebridge/internal/sheetio"
)

// sourceFlags are shared by commands that read a source sheet.
type sourceFlags struct {
	source        string
	sheet         string
	template      string
	templateSheet string
}

func (s *sourceFlags) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&s.source, "source", "", "source workbook (.xlsx or .csv)")
	fs.StringVar(&s.sheet, "sheet", cfg.Template.SourceSheet, "source sheet (default: detect the main sheet)")
	fs.StringVar(&s.template, "template", "", "template workbook giving the destination layout")
	fs.StringVar(&s.templateSheet, "template-sheet", cfg.Template.TemplateSheet, "template sheet")
}

func (s *sourceFlags) request() (pipeline.Request, error) {
	if s.source == "" {
		return pipeline.Request{}, errors.New("-source is required")
	}

	return pipeline.Request{
		SourcePath:    s.source,
		SourceSheet:   s.sheet,
		TemplatePath:  s.template,
		TemplateSheet: s.templateSheet,
	}, nil
}

func newFlagSet(name string, d deps) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(d.Stderr)

	return fs
}

func openRunner(ctx context.Context, cfg *config.Config, p pipeline.Prompter) (*pipeline.Runner, cache.Store, error) {
	store := cache.Open(ctx, cfg.Store.Path, cache.Options{})
	wb := sheetio.NewWorkbook()

	r, err := pipeline.New(cfg, pipeline.Options{Loader: wb, Saver: wb, Prompter: p, Store: store})
	if err != nil {
		store.Close()

		return nil, nil, err
	}

	return r, store, nil
}

func runConvert(ctx context.Context, cfg *config.Config, args []string, d deps) error {
	fs := newFlagSet("run", d)

	var (
		src         sourceFlags
		out         string
		outSheet    string
		name        string
		review      string
		interactive bool
	)

	src.register(fs, cfg)
	fs.StringVar(&out, "out", "", "output workbook (default: the template)")
	fs.StringVar(&outSheet, "out-sheet", "", "output sheet (default: the template sheet)")
	fs.StringVar(&name, "name", "", "named mapping to use and to save")
	fs.StringVar(&review, "review", "", "YAML review file for low-confidence mappings")
	fs.BoolVar(&interactive, "i", false, "review low-confidence mappings at the terminal")

	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := src.request()
	if err != nil {
		return err
	}

	req.OutputPath = out
	if req.OutputPath == "" {
		req.OutputPath = req.TemplatePath
	}

	if req.OutputPath == "" {
		return errors.New("-out is required when no -template is given")
	}

	req.OutputSheet = outSheet
	req.MappingName = name

	var p pipeline.Prompter

	switch {
	case interactive:
		p = &prompt.Terminal{In: d.Stdin, Out: d.Stdout}
	case review != "":
		p = &prompt.ReviewFile{Path: review}
	}

	r, store, err := openRunner(ctx, cfg, p)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := r.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.Stdout, "sheet %q: %d rows written to %s (mapping %s)\n",
		report.Sheet, report.Output.Len(), report.OutputPath, report.Origin)

	if report.Pivot.Skipped > 0 {
		fmt.Fprintf(d.Stdout, "skipped %d rows with unusable tier or rate\n", report.Pivot.Skipped)
	}

	if report.Pivot.Degraded {
		fmt.Fprintln(d.Stdout, "warning: pivot produced no rows; mapped rows were written unchanged")
	}

	if store.Degraded() {
		fmt.Fprintln(d.Stdout, "warning: mapping store unavailable; mapping was not saved")
	}

	return nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, args []string, d deps) error {
	fs := newFlagSet("analyze", d)

	var (
		src  sourceFlags
		dump bool
	)

	src.register(fs, cfg)
	fs.BoolVar(&dump, "dump", false, "dump the full structure")

	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := src.request()
	if err != nil {
		return err
	}

	r, store, err := openRunner(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := r.Suggest(ctx, req)
	if err != nil {
		return err
	}

	s := report.Structure

	if dump {
		spew.Fdump(d.Stdout, s)

		return nil
	}

	fmt.Fprintf(d.Stdout, "sheet %q: %d rows, %d fields, %s, deductibles %s\n",
		report.Sheet, s.RowCount, len(s.Fields), s.Purpose, s.Layout)
	fmt.Fprintf(d.Stdout, "signature %s (cached: %v)\n\n", report.Signature, report.Cached)

	w := tabwriter.NewWriter(d.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tTYPE\tDISTINCT\tNULLS\tTAG\tSAMPLES")

	for _, p := range s.Profiles {
		samples := make([]string, len(p.Samples))
		for i, v := range p.Samples {
			samples[i] = v.Text()
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f%%\t%s\t%s\n",
			p.Name, p.Type, p.Distinct, p.NullRatio*100, p.Tag, strings.Join(samples, ", "))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if len(s.PotentialKeys) > 0 {
		fmt.Fprintf(d.Stdout, "\npotential keys: %s\n", strings.Join(s.PotentialKeys, ", "))
	}

	if report.Diagnostics.HasErrors() {
		fmt.Fprintf(d.Stdout, "\nfield errors: %v\n", report.Diagnostics.Error())
	}

	return nil
}

func runSuggest(ctx context.Context, cfg *config.Config, args []string, d deps) error {
	fs := newFlagSet("suggest", d)

	var (
		src sourceFlags
		out string
	)

	src.register(fs, cfg)
	fs.StringVar(&out, "o", "", "write the suggestions as a YAML review file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := src.request()
	if err != nil {
		return err
	}

	r, store, err := openRunner(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := r.Suggest(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprint(d.Stdout, plan.FormatReport(report.Plan, cfg.Mapping.ConfidenceThreshold))

	if out == "" {
		return nil
	}

	rf := plan.ExportSuggestions(report.Plan)
	rf.Source = req.SourcePath
	rf.Signature = report.Signature

	if err := mapping.WriteFile(rf, out); err != nil {
		return err
	}

	fmt.Fprintf(d.Stdout, "\nwrote %s\n", out)

	return nil
}

func runTemplates(ctx context.Context, cfg *config.Config, args []string, d deps) error {
	store := cache.Open(ctx, cfg.Store.Path, cache.Options{})
	defer store.Close()

	if len(args) == 0 || args[0] == "list" {
		names := store.ListNames(ctx)
		if len(names) == 0 {
			fmt.Fprintln(d.Stdout, "no saved templates")

			return nil
		}

		for _, name := range names {
			fmt.Fprintln(d.Stdout, name)
		}

		return nil
	}

	if args[0] != "delete" || len(args) != 2 {
		return errors.New("usage: templates list | templates delete <name>")
	}

	if !store.Delete(ctx, args[1]) {
		if near, ok := match.Closest(args[1], store.ListNames(ctx), 0.6); ok {
			return fmt.Errorf("no template named %q, did you mean %q?", args[1], near)
		}

		return fmt.Errorf("no template named %q", args[1])
	}

	fmt.Fprintf(d.Stdout, "deleted %s\n", args[1])

	return nil
}

func runRecent(ctx context.Context, cfg *config.Config, args []string, d deps) error {
	fs := newFlagSet("recent", d)
	n := fs.Int("n", 10, "number of mappings to list")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store := cache.Open(ctx, cfg.Store.Path, cache.Options{})
	defer store.Close()

	w := tabwriter.NewWriter(d.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LAST USED\tNAME\tFIELDS\tSIGNATURE")

	for _, rec := range store.Recent(ctx, *n) {
		sig := rec.Signature
		if len(sig) > 12 {
			sig = sig[:12]
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", rec.LastUsedAt.Format("2006-01-02 15:04"), rec.Name, len(rec.Mapping), sig)
	}

	return w.Flush()
}
