package cache

import (
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUInternerFactory creates LRU interner instances.
type LRUInternerFactory struct {
	maxSize int
}

// NewLRUInternerFactory creates a new LRU interner factory.
func NewLRUInternerFactory(maxSize int) InternerFactory {
	return &LRUInternerFactory{maxSize: maxSize}
}

// Create creates a new LRU interner instance.
func (f *LRUInternerFactory) Create() (Interner, error) {
	return NewLRUInterner(f.maxSize)
}

// LRUInterner keeps the most recently used tag lists using golang-lru.
type LRUInterner struct {
	cache     *lru.Cache[string, []string]
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	maxSize   int64
}

// NewLRUInterner creates a new LRU-based interner.
func NewLRUInterner(maxSize int) (*LRUInterner, error) {
	li := &LRUInterner{maxSize: int64(maxSize)}

	cache, err := lru.NewWithEvict[string, []string](maxSize, func(string, []string) {
		li.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	li.cache = cache

	return li, nil
}

// Intern returns the canonical slice for tags.
func (li *LRUInterner) Intern(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	key := internKey(tags)
	if canonical, ok := li.cache.Get(key); ok {
		li.hits.Add(1)
		return canonical
	}

	li.misses.Add(1)
	canonical := slices.Clone(tags)
	li.cache.Add(key, canonical)
	return canonical
}

// Close drops all interned lists.
func (li *LRUInterner) Close() {
	li.cache.Purge()
}

// Metrics returns interner metrics.
func (li *LRUInterner) Metrics() InternerMetrics {
	return InternerMetrics{
		Hits:      li.hits.Load(),
		Misses:    li.misses.Load(),
		Evictions: li.evictions.Load(),
		Capacity:  li.maxSize,
	}
}
