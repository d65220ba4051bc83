// Package integrate merges a pivoted dataset into a destination layout.
//
// A destination with fewer rows than the template threshold is a structural
// template: its rows are placeholders and only its field order survives.
// Otherwise it is a live dataset and the transformed rows are appended to it,
// replacing existing rows that share the same key fields.
package integrate
