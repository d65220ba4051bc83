package cache

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"ratebridge/internal/mapping"
)

// SchemaVersion is the version written to store metadata.
const SchemaVersion = "1.0"

// Record is one stored mapping.
type Record struct {
	ID         string            `yaml:"id"                   json:"id"`
	Signature  string            `yaml:"signature"            json:"signature"`
	Name       string            `yaml:"name,omitempty"       json:"name,omitempty"`
	Mapping    map[string]string `yaml:"mapping"              json:"mapping"`
	Confidence map[string]int    `yaml:"confidence"           json:"confidence"`
	CreatedAt  time.Time         `yaml:"createdAt"            json:"createdAt"`
	SavedAt    time.Time         `yaml:"savedAt"              json:"savedAt"`
	LastUsedAt time.Time         `yaml:"lastUsedAt"           json:"lastUsedAt"`
}

// FieldMapping returns the stored mapping with reason cached.
func (r Record) FieldMapping() mapping.FieldMapping {
	return mapping.FromSources(r.Mapping, r.Confidence, mapping.ReasonCached)
}

// Metadata describes the store document.
type Metadata struct {
	CreatedAt     time.Time `yaml:"createdAt"     json:"createdAt"`
	UpdatedAt     time.Time `yaml:"updatedAt"     json:"updatedAt"`
	SchemaVersion string    `yaml:"schemaVersion" json:"schemaVersion"`
}

// Store persists mappings by signature and by name.
type Store interface {
	// Get returns the record stored under signature and stamps its last-used time.
	Get(ctx context.Context, signature string) (Record, bool)
	// Put upserts the record for signature. A non-empty name also stores it
	// as a named template, replacing any template of that name.
	Put(ctx context.Context, signature string, m mapping.FieldMapping, name string) Record
	// Template returns the named template and stamps its last-used time.
	Template(ctx context.Context, name string) (Record, bool)
	// ListNames returns all template names, sorted.
	ListNames(ctx context.Context) []string
	// Delete removes the named template. It reports whether it existed.
	Delete(ctx context.Context, name string) bool
	// Recent returns records across both collections by last use, newest
	// first, at most n (all when n <= 0).
	Recent(ctx context.Context, n int) []Record
	// Degraded reports whether the store fell back to memory or lost a write.
	Degraded() bool
	// Close releases resources.
	Close() error
}

// Options configures a store.
type Options struct {
	// Logger receives degraded-path warnings. Nil means slog.Default().
	Logger *slog.Logger
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.Default()
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}

	return time.Now().UTC()
}

// recent de-duplicates records sharing an ID (keeping the most recently
// used copy) and returns them newest first, at most n.
func recent(records []Record, n int) []Record {
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		if prev, ok := byID[r.ID]; !ok || r.LastUsedAt.After(prev.LastUsedAt) {
			byID[r.ID] = r
		}
	}

	out := make([]Record, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUsedAt.Equal(out[j].LastUsedAt) {
			return out[i].LastUsedAt.After(out[j].LastUsedAt)
		}

		return out[i].ID < out[j].ID
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}

	return out
}

func newRecord(id, signature string, m mapping.FieldMapping, now time.Time) Record {
	return Record{
		ID:         id,
		Signature:  signature,
		Mapping:    m.Sources(),
		Confidence: m.Confidences(),
		CreatedAt:  now,
		SavedAt:    now,
		LastUsedAt: now,
	}
}
