package cache

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

// IsSQLitePath reports whether path selects the SQLite backend.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

// Open returns the store for path: SQLite for .db/.sqlite/.sqlite3, a
// document file otherwise, memory only for an empty path. A SQLite database
// that cannot be opened degrades to a memory store.
func Open(ctx context.Context, path string, opts Options) Store {
	switch {
	case path == "":
		return NewMemoryStore(opts)
	case IsSQLitePath(path):
		s, err := OpenSQLite(ctx, path, opts)
		if err == nil {
			return s
		}

		opts.logger().WarnContext(ctx, "mapping store unavailable, using memory",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		mem := NewMemoryStore(opts)
		mem.degraded = true

		return mem
	default:
		return NewFileStore(path, opts)
	}
}
