package pipeline

import (
	"context"

	"ratebridge/internal/analyze"
	"ratebridge/internal/common"
	"ratebridge/internal/diagnostic"
	"ratebridge/internal/integrate"
	"ratebridge/internal/mapping"
	"ratebridge/internal/pivot"
	"ratebridge/internal/plan"
	"ratebridge/internal/table"
)

// Loader reads datasets.
type Loader interface {
	Load(path, sheet string) (*table.Dataset, error)
	SheetNames(path string) ([]string, error)
}

// Saver writes datasets.
type Saver interface {
	Save(ds *table.Dataset, path, sheet string) error
}

// Prompter asks a person to confirm or fix a mapping. It returns
// ErrCancelled when the person gives up.
type Prompter interface {
	PromptForMapping(ctx context.Context, sources []string, current mapping.FieldMapping, required []string) (mapping.FieldMapping, error)
}

// Request describes one conversion.
type Request struct {
	SourcePath string
	// SourceSheet empty means pick the main sheet.
	SourceSheet string
	// TemplatePath is the destination layout. Empty means the built-in
	// layout with no existing rows.
	TemplatePath  string
	TemplateSheet string
	// OutputPath empty means the result is not saved.
	OutputPath  string
	OutputSheet string
	// MappingName selects a saved template mapping and names the mapping
	// stored after the run.
	MappingName string
}

// Origin is where the mapping of a run came from.
type Origin int

const (
	OriginResolved Origin = iota // heuristic resolution
	OriginTemplate               // named template in the store
	OriginCached                 // signature match in the store
	OriginManual                 // confirmed through the prompter
)

// String returns a human-readable representation of the Origin.
func (o Origin) String() string {
	switch o {
	case OriginResolved:
		return "resolved"
	case OriginTemplate:
		return "template"
	case OriginCached:
		return "cached"
	case OriginManual:
		return "manual"
	default:
		return common.UnknownStr
	}
}

// Report describes a finished (or suggested) run.
type Report struct {
	RunID     string
	Sheet     string
	Signature string
	Structure *analyze.Structure
	// Plan is set when the mapping was resolved rather than recalled.
	Plan    *plan.Plan
	Mapping mapping.FieldMapping
	Origin  Origin
	// Cached reports whether the store holds a mapping for the signature.
	Cached      bool
	Pivot       *pivot.Result
	Integration *integrate.Result
	// Output is the saved dataset.
	Output     *table.Dataset
	OutputPath string
	// Diagnostics collects analyzer and resolver findings.
	Diagnostics diagnostic.Diagnostics
}

// Outcome is what Start delivers.
type Outcome struct {
	Report *Report
	Err    error
}
