package cache

import (
	"context"

	"github.com/huykn/tagged-cache/types"
)

// Logger defines the interface for logging in the tagged cache.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)

	// Info logs an info message.
	Info(msg string, args ...any)

	// Warn logs a warning message.
	Warn(msg string, args ...any)

	// Error logs an error message.
	Error(msg string, args ...any)
}

// Marshaller defines the interface for wire encoding of cache payloads.
type Marshaller interface {
	// Marshal serializes a value to bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes a value from bytes.
	Unmarshal(data []byte, v any) error

	// ContentType returns the media type produced by Marshal.
	ContentType() string
}

// Candidate identifies one stored record picked for removal during an
// invalidation. Version pins the exact record that was observed, so a later
// replacement of the same key is not removed by a stale plan.
type Candidate struct {
	Key     string
	Version uint64
}

// Table is the entry table: the single owner of all cache entries.
//
// Implementations must be safe for concurrent use. A Put replaces the whole
// record for its key atomically; Get returns a copy that later writes cannot
// affect.
type Table interface {
	// Put inserts or replaces the entry stored at key. The table keeps tags
	// as given; callers must not modify the slice afterwards.
	Put(key, value string, tags []string)

	// Get returns a copy of the entry stored at key.
	Get(key string) (types.Entry, bool)

	// Remove deletes the entry at key. It reports whether an entry was removed.
	Remove(key string) bool

	// RemoveCandidates deletes every candidate whose stored version still
	// matches. Keys that were removed or replaced since are skipped.
	// It returns the number of entries removed.
	RemoveCandidates(batch []Candidate) int

	// Segments returns the number of independently locked segments.
	Segments() int

	// ScanSegment calls fn for each record in segment i while holding that
	// segment's read lock. fn must not call back into the table and must
	// not retain or modify tags.
	ScanSegment(i int, fn func(key string, tags []string, version uint64))

	// Len returns the number of stored entries.
	Len() int
}

// TableFactory defines the interface for creating entry tables.
type TableFactory interface {
	// Create creates a new, empty table.
	Create() (Table, error)
}

// Interner returns canonical tag slices so that entries stored with the same
// tag list share one backing array. Returned slices must be treated as
// read-only.
type Interner interface {
	// Intern returns a slice equal to tags.
	Intern(tags []string) []string

	// Close releases the interner's resources.
	Close()

	// Metrics returns interner metrics.
	Metrics() InternerMetrics
}

// InternerMetrics represents tag interner metrics.
type InternerMetrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Capacity  int64
}

// InternerFactory defines the interface for creating interner implementations.
type InternerFactory interface {
	// Create creates a new interner instance.
	Create() (Interner, error)
}

// Cache defines the interface for a tag-indexed cache.
type Cache interface {
	// Put stores value and tags at key, replacing any previous entry.
	Put(ctx context.Context, key, value string, tags []string) error

	// Get retrieves a copy of the entry at key.
	// Returns the entry and true if found, a zero entry and false otherwise.
	Get(ctx context.Context, key string) (types.Entry, bool)

	// Delete removes the entry at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// InvalidateByTags removes every entry carrying at least one of tags and
	// returns how many were removed. It returns only after the removal has
	// finished.
	InvalidateByTags(ctx context.Context, tags []string) (int, error)

	// Len returns the number of stored entries.
	Len() int

	// Close closes the cache and releases all resources.
	Close() error

	// Stats returns cache statistics.
	Stats() Stats
}

// InvalidationEvent is an alias for types.InvalidationEvent for convenience.
type InvalidationEvent = types.InvalidationEvent

// Stats represents cache statistics.
type Stats struct {
	InstanceID         string `json:"instance_id" msgpack:"instance_id"`
	Hits               int64  `json:"hits" msgpack:"hits"`
	Misses             int64  `json:"misses" msgpack:"misses"`
	Puts               int64  `json:"puts" msgpack:"puts"`
	Deletes            int64  `json:"deletes" msgpack:"deletes"`
	Invalidations      int64  `json:"invalidations" msgpack:"invalidations"`
	InvalidatedEntries int64  `json:"invalidated_entries" msgpack:"invalidated_entries"`
	Size               int64  `json:"size" msgpack:"size"`
	InternerHits       int64  `json:"interner_hits" msgpack:"interner_hits"`
	InternerMisses     int64  `json:"interner_misses" msgpack:"interner_misses"`
}
