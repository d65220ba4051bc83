// Package diagnostic provides structured warnings, errors, and
// "why this mapped" explanations for analysis, mapping, and pivoting.
//
// Key capabilities:
//   - Per-field analysis failures that never abort the run
//   - Unmapped and ambiguous target field reports with top-N candidates
//   - SchemaError, the one fatal error class of a run, carrying enough
//     context (dataset shape, rule, field names) to diagnose it
package diagnostic
