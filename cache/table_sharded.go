package cache

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/huykn/tagged-cache/types"
)

type shard struct {
	mu    sync.RWMutex
	items map[string]*record
}

// ShardedTable is a Table split into independently locked shards. Operations
// on keys in different shards never contend.
type ShardedTable struct {
	shards  []*shard
	mask    uint64
	version atomic.Uint64
	size    atomic.Int64
}

// NewShardedTable creates a table with at least n shards. The shard count is
// rounded up to a power of two.
func NewShardedTable(n int) (*ShardedTable, error) {
	if n <= 0 {
		return nil, ErrInvalidConfig
	}

	count := 1
	for count < n {
		count <<= 1
	}

	shards := make([]*shard, count)
	for i := range shards {
		shards[i] = &shard{items: make(map[string]*record)}
	}

	return &ShardedTable{
		shards: shards,
		mask:   uint64(count - 1),
	}, nil
}

func (t *ShardedTable) shardIndex(key string) int {
	return int(xxhash.Sum64String(key) & t.mask)
}

// Put inserts or replaces the entry stored at key. The table takes ownership
// of tags.
func (t *ShardedTable) Put(key, value string, tags []string) {
	rec := &record{value: value, tags: tags, version: t.version.Add(1)}
	s := t.shards[t.shardIndex(key)]

	s.mu.Lock()
	if _, exists := s.items[key]; !exists {
		t.size.Add(1)
	}
	s.items[key] = rec
	s.mu.Unlock()
}

// Get returns a copy of the entry stored at key.
func (t *ShardedTable) Get(key string) (types.Entry, bool) {
	s := t.shards[t.shardIndex(key)]

	s.mu.RLock()
	rec, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return types.Entry{}, false
	}
	return rec.entry(key), true
}

// Remove deletes the entry at key.
func (t *ShardedTable) Remove(key string) bool {
	s := t.shards[t.shardIndex(key)]

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	t.size.Add(-1)
	return true
}

// RemoveCandidates deletes the batch, locking each touched shard once.
func (t *ShardedTable) RemoveCandidates(batch []Candidate) int {
	if len(batch) == 0 {
		return 0
	}

	byShard := make(map[int][]Candidate)
	for _, c := range batch {
		idx := t.shardIndex(c.Key)
		byShard[idx] = append(byShard[idx], c)
	}

	removed := 0
	for idx, candidates := range byShard {
		s := t.shards[idx]
		s.mu.Lock()
		for _, c := range candidates {
			if rec, ok := s.items[c.Key]; ok && rec.version == c.Version {
				delete(s.items, c.Key)
				removed++
			}
		}
		s.mu.Unlock()
	}

	t.size.Add(int64(-removed))
	return removed
}

// Segments returns the shard count.
func (t *ShardedTable) Segments() int {
	return len(t.shards)
}

// ScanSegment visits every record of shard i under its read lock.
func (t *ShardedTable) ScanSegment(i int, fn func(key string, tags []string, version uint64)) {
	s := t.shards[i]

	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, rec := range s.items {
		fn(key, rec.tags, rec.version)
	}
}

// Len returns the number of stored entries.
func (t *ShardedTable) Len() int {
	return int(t.size.Load())
}
