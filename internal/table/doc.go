// Package table provides the in-memory tabular model shared by every stage:
// an ordered field list plus rows of field -> Value.
//
// A Value is one of three kinds:
//   - Empty: blank or absent cell
//   - String: free text
//   - Number: float64
//
// Empty is the single canonical representation of a missing cell. Loaders
// must never produce textual "null" or "nan" placeholders.
package table
