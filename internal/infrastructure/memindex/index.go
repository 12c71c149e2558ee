// Package memindex holds the bounded in-memory tier of the cache.
package memindex

import (
	"sync"

	"github.com/avatarctic/diskcache/internal/core/domain/cache"
	"github.com/avatarctic/diskcache/internal/core/ports"
)

// DefaultCapacity bounds the index when no capacity is configured.
const DefaultCapacity = 1000

// Index is a capacity-bounded map from raw key to record. The bound is an
// admission cutoff: once full, new keys are refused and resident entries stay
// until removed, expired, or cleared. This is deliberately not an LRU; the
// caller relies on a key either being resident or served from disk, never
// silently displaced.
type Index struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*cache.Record
}

// New creates an index holding at most capacity entries. Non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Index{
		capacity: capacity,
		items:    make(map[string]*cache.Record),
	}
}

// Get returns the resident record for key, if any.
func (i *Index) Get(key string) (*cache.Record, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	rec, ok := i.items[key]
	return rec, ok
}

// Put inserts or overwrites key. At capacity, a new key is refused and Put
// reports false; an already-resident key is always overwritten.
func (i *Index) Put(key string, rec *cache.Record) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, resident := i.items[key]; !resident && len(i.items) >= i.capacity {
		return false
	}
	i.items[key] = rec
	return true
}

// Remove drops key from the index; absent keys are a no-op.
func (i *Index) Remove(key string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.items, key)
}

// Len returns the number of resident entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.items)
}

// Clear empties the index.
func (i *Index) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.items = make(map[string]*cache.Record)
}

// Keys snapshots the resident keys. The snapshot may be stale by the time the
// caller iterates it; sweep callers re-check each entry before acting.
func (i *Index) Keys() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	keys := make([]string, 0, len(i.items))
	for k := range i.items {
		keys = append(keys, k)
	}
	return keys
}

var _ ports.MemoryIndex = (*Index)(nil)
