package pipeline

import "errors"

var (
	// ErrNoDataset is returned when the source or template cannot be loaded.
	ErrNoDataset = errors.New("no dataset")
	// ErrCancelled is returned when the person cancels the mapping prompt.
	ErrCancelled = errors.New("mapping cancelled")
	// ErrNoData is returned when no row survives the run.
	ErrNoData = errors.New("no data survived the run")
)
