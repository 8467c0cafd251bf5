package cache

import (
	"sync"

	"github.com/huykn/tagged-cache/types"
)

// LockedTable is a Table guarded by a single RWMutex. Simple, but every
// write serializes with every other operation.
type LockedTable struct {
	mu      sync.RWMutex
	items   map[string]*record
	version uint64
}

// NewLockedTable creates an empty single-lock table.
func NewLockedTable() *LockedTable {
	return &LockedTable{items: make(map[string]*record)}
}

// Put inserts or replaces the entry stored at key. The table takes ownership
// of tags.
func (t *LockedTable) Put(key, value string, tags []string) {
	t.mu.Lock()
	t.version++
	t.items[key] = &record{value: value, tags: tags, version: t.version}
	t.mu.Unlock()
}

// Get returns a copy of the entry stored at key.
func (t *LockedTable) Get(key string) (types.Entry, bool) {
	t.mu.RLock()
	rec, ok := t.items[key]
	t.mu.RUnlock()

	if !ok {
		return types.Entry{}, false
	}
	return rec.entry(key), true
}

// Remove deletes the entry at key.
func (t *LockedTable) Remove(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[key]; !ok {
		return false
	}
	delete(t.items, key)
	return true
}

// RemoveCandidates deletes the batch under one lock acquisition.
func (t *LockedTable) RemoveCandidates(batch []Candidate) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for _, c := range batch {
		if rec, ok := t.items[c.Key]; ok && rec.version == c.Version {
			delete(t.items, c.Key)
			removed++
		}
	}
	return removed
}

// Segments always returns 1.
func (t *LockedTable) Segments() int {
	return 1
}

// ScanSegment visits every record under the read lock. i is ignored.
func (t *LockedTable) ScanSegment(i int, fn func(key string, tags []string, version uint64)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for key, rec := range t.items {
		fn(key, rec.tags, rec.version)
	}
}

// Len returns the number of stored entries.
func (t *LockedTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
