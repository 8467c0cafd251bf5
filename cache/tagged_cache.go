package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/huykn/tagged-cache/types"
)

// TaggedCache is an in-process cache whose entries can be invalidated in bulk
// by tag.
type TaggedCache struct {
	table       Table
	invalidator *Invalidator
	interner    Interner
	logger      Logger
	options     Options

	// lifecycle is held shared by Put and exclusively by Close, so the
	// interner is never closed under an in-flight Put.
	lifecycle sync.RWMutex
	closed    atomic.Bool

	hits               atomic.Int64
	misses             atomic.Int64
	puts               atomic.Int64
	deletes            atomic.Int64
	invalidations      atomic.Int64
	invalidatedEntries atomic.Int64
}

// New creates a new TaggedCache instance.
func New(opts Options) (*TaggedCache, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Set defaults for optional fields
	if opts.InstanceID == "" {
		opts.InstanceID = uuid.NewString()
	}
	if opts.TableFactory == nil {
		opts.TableFactory = tableFactoryFor(opts)
	}
	if opts.InternerFactory == nil {
		opts.InternerFactory = internerFactoryFor(opts)
	}
	if opts.Logger == nil {
		opts.Logger = NewNoOpLogger()
	}

	table, err := opts.TableFactory.Create()
	if err != nil {
		return nil, err
	}
	if table == nil {
		panic("cache: table factory returned a nil table")
	}

	interner, err := opts.InternerFactory.Create()
	if err != nil {
		return nil, err
	}

	tc := &TaggedCache{
		table:       table,
		invalidator: NewInvalidator(table, opts.BatchSize, opts.ScanConcurrency),
		interner:    interner,
		logger:      opts.Logger,
		options:     opts,
	}

	if opts.DebugMode {
		tc.logger.Debug("New: cache created",
			"instance", opts.InstanceID,
			"segments", table.Segments(),
			"batchSize", opts.BatchSize)
	}

	return tc, nil
}

// InstanceID returns the identifier of this cache instance.
func (tc *TaggedCache) InstanceID() string {
	return tc.options.InstanceID
}

// Put stores value and tags at key, replacing any previous entry.
func (tc *TaggedCache) Put(ctx context.Context, key, value string, tags []string) error {
	tc.lifecycle.RLock()
	defer tc.lifecycle.RUnlock()

	if tc.closed.Load() {
		return ErrCacheClosed
	}

	tc.table.Put(key, value, tc.interner.Intern(tags))
	tc.puts.Add(1)

	if tc.options.DebugMode {
		tc.logger.Debug("Put: stored entry", "key", key, "tags", tags)
	}
	return nil
}

// Get retrieves a copy of the entry at key.
func (tc *TaggedCache) Get(ctx context.Context, key string) (types.Entry, bool) {
	if tc.closed.Load() {
		return types.Entry{}, false
	}

	entry, found := tc.table.Get(key)
	if !found {
		tc.misses.Add(1)
		if tc.options.DebugMode {
			tc.logger.Debug("Get: key not found", "key", key)
		}
		return types.Entry{}, false
	}

	tc.hits.Add(1)
	if tc.options.DebugMode {
		tc.logger.Debug("Get: found entry", "key", key)
	}
	return entry, true
}

// Delete removes the entry at key. Deleting a missing key is not an error.
func (tc *TaggedCache) Delete(ctx context.Context, key string) error {
	if tc.closed.Load() {
		return ErrCacheClosed
	}

	removed := tc.table.Remove(key)
	if removed {
		tc.deletes.Add(1)
	}

	if tc.options.DebugMode {
		tc.logger.Debug("Delete: removing key", "key", key, "removed", removed)
	}
	return nil
}

// InvalidateByTags removes every entry carrying at least one of tags.
//
// The call always runs to completion, even if ctx is cancelled, so a
// successful return means the removal has finished.
func (tc *TaggedCache) InvalidateByTags(ctx context.Context, tags []string) (int, error) {
	if tc.closed.Load() {
		return 0, ErrCacheClosed
	}

	if tc.options.DebugMode {
		tc.logger.Debug("InvalidateByTags: starting", "tags", tags)
	}

	result := tc.invalidator.InvalidateByTags(tags)
	if len(tags) > 0 {
		tc.invalidations.Add(1)
		tc.invalidatedEntries.Add(int64(result.Removed))
	}

	if tc.options.DebugMode {
		tc.logger.Debug("InvalidateByTags: finished",
			"tags", tags,
			"matched", result.Matched,
			"removed", result.Removed,
			"batches", result.Batches,
			"duration", result.Duration)
	}

	if tc.options.OnInvalidate != nil {
		tc.notify(InvalidationEvent{
			Sender:   tc.options.InstanceID,
			Tags:     tags,
			Matched:  result.Matched,
			Removed:  result.Removed,
			Batches:  result.Batches,
			Duration: result.Duration,
		})
	}

	return result.Removed, nil
}

// notify runs the OnInvalidate hook. A panicking hook is reported through
// OnError and does not affect the caller.
func (tc *TaggedCache) notify(event InvalidationEvent) {
	defer func() {
		if r := recover(); r != nil {
			err := hookError(r)
			if tc.options.OnError != nil {
				tc.options.OnError(err)
			}
			tc.logger.Error("OnInvalidate hook panicked", "error", err)
		}
	}()
	tc.options.OnInvalidate(event)
}

// Len returns the number of stored entries.
func (tc *TaggedCache) Len() int {
	return tc.table.Len()
}

// Close closes the cache and releases all resources.
func (tc *TaggedCache) Close() error {
	tc.lifecycle.Lock()
	if !tc.closed.CompareAndSwap(false, true) {
		tc.lifecycle.Unlock()
		return nil
	}
	tc.lifecycle.Unlock()

	tc.interner.Close()

	if tc.options.DebugMode {
		tc.logger.Debug("Close: cache closed", "instance", tc.options.InstanceID)
	}
	return nil
}

// Stats returns cache statistics.
func (tc *TaggedCache) Stats() Stats {
	im := tc.interner.Metrics()
	return Stats{
		InstanceID:         tc.options.InstanceID,
		Hits:               tc.hits.Load(),
		Misses:             tc.misses.Load(),
		Puts:               tc.puts.Load(),
		Deletes:            tc.deletes.Load(),
		Invalidations:      tc.invalidations.Load(),
		InvalidatedEntries: tc.invalidatedEntries.Load(),
		Size:               int64(tc.table.Len()),
		InternerHits:       im.Hits,
		InternerMisses:     im.Misses,
	}
}

// ErrCacheClosed is returned when operations are performed on a closed cache.
var ErrCacheClosed = NewError("cache is closed")
