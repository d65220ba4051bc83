package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"ratebridge/internal/mapping"
)

// Document is the persisted form of a FileStore.
type Document struct {
	BySignature map[string]Record `yaml:"bySignature" json:"bySignature"`
	ByName      map[string]Record `yaml:"byName"      json:"byName"`
	Metadata    Metadata          `yaml:"metadata"    json:"metadata"`
}

// FileStore keeps the whole store in memory and rewrites one document file
// after every change. An empty path gives a memory-only store.
type FileStore struct {
	mu       sync.Mutex
	path     string
	doc      Document
	opts     Options
	degraded bool
}

var _ Store = (*FileStore)(nil)

// NewMemoryStore returns a store that never touches disk.
func NewMemoryStore(opts Options) *FileStore {
	s := &FileStore{opts: opts}
	s.doc = s.freshDocument()

	return s
}

// NewFileStore loads the document at path. A missing file starts an empty
// store; an unreadable or corrupt one starts an empty store, logs a warning
// and marks the store degraded. It never fails.
func NewFileStore(path string, opts Options) *FileStore {
	s := &FileStore{path: path, opts: opts}

	doc, err := readDocument(path)
	switch {
	case err == nil:
		s.doc = doc
	case errors.Is(err, fs.ErrNotExist):
		s.doc = s.freshDocument()
	default:
		opts.logger().Warn("mapping store unreadable, starting fresh",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		s.doc = s.freshDocument()
		s.degraded = true
	}

	return s
}

func (s *FileStore) freshDocument() Document {
	now := s.opts.now()

	return Document{
		BySignature: map[string]Record{},
		ByName:      map[string]Record{},
		Metadata:    Metadata{CreatedAt: now, UpdatedAt: now, SchemaVersion: SchemaVersion},
	}
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func readDocument(path string) (Document, error) {
	var doc Document

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}

	if isJSON(path) {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}

	if err != nil {
		return doc, fmt.Errorf("failed to parse mapping store %s: %w", path, err)
	}

	if doc.BySignature == nil {
		doc.BySignature = map[string]Record{}
	}

	if doc.ByName == nil {
		doc.ByName = map[string]Record{}
	}

	if doc.Metadata.SchemaVersion == "" {
		doc.Metadata.SchemaVersion = SchemaVersion
	}

	return doc, nil
}

// persist writes the document. Failures are logged and mark the store
// degraded; the in-memory state stays authoritative.
func (s *FileStore) persist(ctx context.Context) {
	s.doc.Metadata.UpdatedAt = s.opts.now()

	if s.path == "" {
		return
	}

	if err := s.write(); err != nil {
		s.degraded = true
		s.opts.logger().WarnContext(ctx, "mapping store write failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
	}
}

func (s *FileStore) write() error {
	var (
		data []byte
		err  error
	)

	if isJSON(s.path) {
		data, err = json.MarshalIndent(s.doc, "", "  ")
	} else {
		data, err = yaml.Marshal(s.doc)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal mapping store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping store %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace mapping store %s: %w", s.path, err)
	}

	return nil
}

// touch stamps the last-used time of every copy of the record with id.
func (s *FileStore) touch(id string) {
	now := s.opts.now()

	for k, r := range s.doc.BySignature {
		if r.ID == id {
			r.LastUsedAt = now
			s.doc.BySignature[k] = r
		}
	}

	for k, r := range s.doc.ByName {
		if r.ID == id {
			r.LastUsedAt = now
			s.doc.ByName[k] = r
		}
	}
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, signature string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.doc.BySignature[signature]
	if !ok {
		return Record{}, false
	}

	s.touch(r.ID)
	s.persist(ctx)

	return s.doc.BySignature[signature], true
}

// Put implements Store.
func (s *FileStore) Put(ctx context.Context, signature string, m mapping.FieldMapping, name string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.now()

	r := newRecord(uuid.NewString(), signature, m, now)
	if prev, ok := s.doc.BySignature[signature]; ok {
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
		r.Name = prev.Name
	}

	if name != "" {
		r.Name = name
		s.doc.ByName[name] = r
	}

	s.doc.BySignature[signature] = r
	s.persist(ctx)

	return r
}

// Template implements Store.
func (s *FileStore) Template(ctx context.Context, name string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.doc.ByName[name]
	if !ok {
		return Record{}, false
	}

	s.touch(r.ID)
	s.persist(ctx)

	return s.doc.ByName[name], true
}

// ListNames implements Store.
func (s *FileStore) ListNames(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.doc.ByName))
	for n := range s.doc.ByName {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.ByName[name]; !ok {
		s.opts.logger().InfoContext(ctx, "template not found", slog.String("name", name))

		return false
	}

	delete(s.doc.ByName, name)
	s.persist(ctx)

	return true
}

// Recent implements Store.
func (s *FileStore) Recent(_ context.Context, n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Record, 0, len(s.doc.BySignature)+len(s.doc.ByName))
	for _, r := range s.doc.BySignature {
		all = append(all, r)
	}

	for _, r := range s.doc.ByName {
		all = append(all, r)
	}

	return recent(all, n)
}

// Metadata returns the document metadata.
func (s *FileStore) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.Metadata
}

// Degraded implements Store.
func (s *FileStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.degraded
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
