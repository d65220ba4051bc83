package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ratebridge/internal/mapping"
)

const (
	collectionSignature = "signature"
	collectionName      = "name"
)

// SQLiteStore implements Store on a SQLite database.
//
// One table holds both collections, keyed by (collection, key), so a named
// template is a snapshot exactly as in the document store. Timestamps are
// stored as RFC3339Nano strings and mappings as JSON text.
type SQLiteStore struct {
	mu       sync.Mutex
	db       *sql.DB
	opts     Options
	degraded bool
}

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	collection   TEXT NOT NULL,
	key          TEXT NOT NULL,
	id           TEXT NOT NULL,
	signature    TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	mapping      TEXT NOT NULL,
	confidence   TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	saved_at     TEXT NOT NULL,
	last_used_at TEXT NOT NULL,
	PRIMARY KEY (collection, key)
);

CREATE INDEX IF NOT EXISTS idx_records_id ON records(id);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// OpenSQLite opens (creating when needed) the database at dsn.
func OpenSQLite(ctx context.Context, dsn string, opts Options) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", dsn, err)
	}

	s := &SQLiteStore{db: db, opts: opts}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create sqlite schema: %w", err)
	}

	now := formatTime(s.opts.now())

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO metadata (key, value) VALUES ('createdAt', ?), ('updatedAt', ?), ('schemaVersion', ?)`,
		now, now, SchemaVersion)
	if err != nil {
		return fmt.Errorf("init sqlite metadata: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

// fail logs a failed operation and marks the store degraded.
func (s *SQLiteStore) fail(ctx context.Context, op string, err error) {
	s.degraded = true
	s.opts.logger().WarnContext(ctx, "mapping store operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

const selectRecord = `SELECT id, signature, name, mapping, confidence, created_at, saved_at, last_used_at FROM records`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		r                       Record
		mappingJSON, confJSON   string
		created, saved, lastUse string
	)

	if err := row.Scan(&r.ID, &r.Signature, &r.Name, &mappingJSON, &confJSON, &created, &saved, &lastUse); err != nil {
		return Record{}, err
	}

	if err := json.Unmarshal([]byte(mappingJSON), &r.Mapping); err != nil {
		return Record{}, fmt.Errorf("decode mapping of record %s: %w", r.ID, err)
	}

	if err := json.Unmarshal([]byte(confJSON), &r.Confidence); err != nil {
		return Record{}, fmt.Errorf("decode confidence of record %s: %w", r.ID, err)
	}

	r.CreatedAt = parseTime(created)
	r.SavedAt = parseTime(saved)
	r.LastUsedAt = parseTime(lastUse)

	return r, nil
}

// lookup reads one record and stamps last-used on every copy of it.
func (s *SQLiteStore) lookup(ctx context.Context, collection, key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE collection = ? AND key = ?`, collection, key))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false
	}

	if err != nil {
		s.fail(ctx, "get", err)
		return Record{}, false
	}

	r.LastUsedAt = s.opts.now()
	if err := s.touch(ctx, r.ID, r.LastUsedAt); err != nil {
		s.fail(ctx, "touch", err)
	}

	return r, true
}

func (s *SQLiteStore) touch(ctx context.Context, id string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE records SET last_used_at = ? WHERE id = ?`, formatTime(at), id); err != nil {
		return err
	}

	return s.stampUpdated(ctx, s.db)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) stampUpdated(ctx context.Context, db execer) error {
	_, err := db.ExecContext(ctx, `UPDATE metadata SET value = ? WHERE key = 'updatedAt'`, formatTime(s.opts.now()))
	return err
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, signature string) (Record, bool) {
	return s.lookup(ctx, collectionSignature, signature)
}

// Template implements Store.
func (s *SQLiteStore) Template(ctx context.Context, name string) (Record, bool) {
	return s.lookup(ctx, collectionName, name)
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, signature string, m mapping.FieldMapping, name string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := newRecord(uuid.NewString(), signature, m, s.opts.now())

	prev, err := scanRecord(s.db.QueryRowContext(ctx,
		selectRecord+` WHERE collection = ? AND key = ?`, collectionSignature, signature))

	switch {
	case err == nil:
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
		r.Name = prev.Name
	case !errors.Is(err, sql.ErrNoRows):
		s.fail(ctx, "put", err)
		return r
	}

	if name != "" {
		r.Name = name
	}

	if err := s.upsert(ctx, r, name); err != nil {
		s.fail(ctx, "put", err)
	}

	return r
}

func (s *SQLiteStore) upsert(ctx context.Context, r Record, name string) error {
	mappingJSON, err := json.Marshal(r.Mapping)
	if err != nil {
		return err
	}

	confJSON, err := json.Marshal(r.Confidence)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO records (collection, key, id, signature, name, mapping, confidence, created_at, saved_at, last_used_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (collection, key) DO UPDATE SET
	id = excluded.id,
	signature = excluded.signature,
	name = excluded.name,
	mapping = excluded.mapping,
	confidence = excluded.confidence,
	created_at = excluded.created_at,
	saved_at = excluded.saved_at,
	last_used_at = excluded.last_used_at`

	keys := [][2]string{{collectionSignature, r.Signature}}
	if name != "" {
		keys = append(keys, [2]string{collectionName, name})
	}

	for _, k := range keys {
		_, err := tx.ExecContext(ctx, q, k[0], k[1], r.ID, r.Signature, r.Name,
			string(mappingJSON), string(confJSON),
			formatTime(r.CreatedAt), formatTime(r.SavedAt), formatTime(r.LastUsedAt))
		if err != nil {
			return fmt.Errorf("upsert %s %q: %w", k[0], k[1], err)
		}
	}

	if err := s.stampUpdated(ctx, tx); err != nil {
		return err
	}

	return tx.Commit()
}

// ListNames implements Store.
func (s *SQLiteStore) ListNames(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM records WHERE collection = ? ORDER BY key`, collectionName)
	if err != nil {
		s.fail(ctx, "list", err)
		return nil
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			s.fail(ctx, "list", err)
			return names
		}

		names = append(names, n)
	}

	if err := rows.Err(); err != nil {
		s.fail(ctx, "list", err)
	}

	return names
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND key = ?`, collectionName, name)
	if err != nil {
		s.fail(ctx, "delete", err)
		return false
	}

	n, err := res.RowsAffected()
	if err != nil {
		s.fail(ctx, "delete", err)
		return false
	}

	if n == 0 {
		s.opts.logger().InfoContext(ctx, "template not found", slog.String("name", name))
		return false
	}

	if err := s.stampUpdated(ctx, s.db); err != nil {
		s.fail(ctx, "delete", err)
	}

	return true
}

// Recent implements Store.
func (s *SQLiteStore) Recent(ctx context.Context, n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, selectRecord)
	if err != nil {
		s.fail(ctx, "recent", err)
		return nil
	}
	defer rows.Close()

	var all []Record

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			s.fail(ctx, "recent", err)
			continue
		}

		all = append(all, r)
	}

	if err := rows.Err(); err != nil {
		s.fail(ctx, "recent", err)
	}

	return recent(all, n)
}

// Metadata reads the store metadata.
func (s *SQLiteStore) Metadata(ctx context.Context) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return Metadata{}, err
	}
	defer rows.Close()

	var md Metadata

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Metadata{}, err
		}

		switch k {
		case "createdAt":
			md.CreatedAt = parseTime(v)
		case "updatedAt":
			md.UpdatedAt = parseTime(v)
		case "schemaVersion":
			md.SchemaVersion = v
		}
	}

	return md, rows.Err()
}

// Degraded implements Store.
func (s *SQLiteStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.degraded
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
