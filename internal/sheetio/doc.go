// Package sheetio loads and saves datasets as .xlsx workbooks or .csv files.
//
// The first non-blank row of a sheet is its header. Blank headers become
// "Unnamed: <i>" and repeated headers get ".1", ".2" suffixes, so every
// field name in a loaded dataset is unique.
package sheetio
