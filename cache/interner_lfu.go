package cache

import (
	"slices"
	"sync/atomic"

	lfu "github.com/dgraph-io/ristretto"
)

// LFUInternerFactory creates Ristretto interner instances.
type LFUInternerFactory struct {
	config InternerConfig
}

// NewLFUInternerFactory creates a new Ristretto interner factory.
func NewLFUInternerFactory(config InternerConfig) InternerFactory {
	return &LFUInternerFactory{config: config}
}

// Create creates a new Ristretto interner instance.
func (f *LFUInternerFactory) Create() (Interner, error) {
	return NewLFUInterner(f.config)
}

// LFUInterner keeps the most frequently used tag lists using Ristretto.
// Admission is asynchronous, so a list may be interned a few calls after it
// is first seen.
type LFUInterner struct {
	cache     *lfu.Cache
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewLFUInterner creates a new Ristretto-based interner. The cost of an
// interned list is its number of tags.
func NewLFUInterner(config InternerConfig) (*LFUInterner, error) {
	li := &LFUInterner{}

	cache, err := lfu.NewCache(&lfu.Config{
		NumCounters:        config.NumCounters,
		MaxCost:            config.MaxCost,
		BufferItems:        config.BufferItems,
		IgnoreInternalCost: true,
		OnEvict: func(item *lfu.Item) {
			li.evictions.Add(1)
		},
	})
	if err != nil {
		return nil, err
	}
	li.cache = cache

	return li, nil
}

// Intern returns the canonical slice for tags.
func (li *LFUInterner) Intern(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	key := internKey(tags)
	if value, ok := li.cache.Get(key); ok {
		if canonical, ok := value.([]string); ok {
			li.hits.Add(1)
			return canonical
		}
	}

	li.misses.Add(1)
	canonical := slices.Clone(tags)
	li.cache.Set(key, canonical, int64(len(canonical)))
	return canonical
}

// Wait blocks until pending admissions are applied.
func (li *LFUInterner) Wait() {
	li.cache.Wait()
}

// Close stops Ristretto's background goroutines.
func (li *LFUInterner) Close() {
	li.cache.Close()
}

// Metrics returns interner metrics.
func (li *LFUInterner) Metrics() InternerMetrics {
	return InternerMetrics{
		Hits:      li.hits.Load(),
		Misses:    li.misses.Load(),
		Evictions: li.evictions.Load(),
		Capacity:  li.cache.MaxCost(),
	}
}
