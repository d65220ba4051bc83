// Package pivot collapses narrow (key, tier, value) rows into one wide row
// per grouping key with one Deduct<N> column per deductible tier, and
// derives the primary tier of each row.
//
// The fold never mutates its input: rows are read once, aggregates are built
// in a fresh map, and a new dataset is emitted.
package pivot
