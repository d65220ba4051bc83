// Package analyze profiles tabular datasets.
//
// It infers a type per field, counts distinct values and nulls, draws
// samples, and guesses a semantic tag from the field name and then from the
// values. Dataset-wide it classifies the sheet purpose and detects whether
// deductible tiers are already laid out as columns.
//
// Key types:
//   - ColumnProfile: per-field statistics and tag
//   - Structure: all profiles plus dataset-level findings
//   - Analyzer: runs the profiling with configurable thresholds
package analyze
