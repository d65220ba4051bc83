// Package cache persists field mappings keyed by structural signature.
//
// A Store keeps two collections: records by signature and named templates by
// name. Every stored record carries the mapping, per-target confidence,
// created/saved/last-used timestamps and an optional display name.
//
// Backends:
//   - FileStore: one YAML (or JSON, by extension) document
//   - SQLiteStore: a SQLite database (modernc.org/sqlite, no cgo)
//
// Persistence problems never fail a run. A missing or corrupt store starts
// fresh in memory, and failed writes are logged and mark the store degraded.
package cache
