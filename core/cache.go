package core

import (
	"slices"
	"sync"

	"github.com/huangsam/assetload/schema"
)

// CacheStore is a bounded map of resolved resources with FIFO eviction.
// Eviction follows insertion order, so reading a key does not protect it.
type CacheStore struct {
	mu         sync.Mutex
	entries    map[schema.ResourceKey]schema.CacheEntry
	order      []schema.ResourceKey // oldest first
	maxEntries int
	seq        uint64
}

// NewCacheStore creates a store holding at most maxEntries entries.
// Values below 1 fall back to schema.DefaultMaxEntries.
func NewCacheStore(maxEntries int) *CacheStore {
	if maxEntries < 1 {
		maxEntries = schema.DefaultMaxEntries
	}
	return &CacheStore{
		entries:    make(map[schema.ResourceKey]schema.CacheEntry, maxEntries),
		order:      make([]schema.ResourceKey, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns the entry for key, if present.
func (c *CacheStore) Get(key schema.ResourceKey) (schema.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Put inserts or replaces the entry for key at the newest position,
// then evicts the oldest entry while the store is over capacity.
func (c *CacheStore) Put(key schema.ResourceKey, resolvedURI string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		if i := slices.Index(c.order, key); i >= 0 {
			c.order = slices.Delete(c.order, i, i+1)
		}
	}
	c.seq++
	c.entries[key] = schema.CacheEntry{Key: key, ResolvedURI: resolvedURI, InsertedAt: c.seq}
	c.order = append(c.order, key)

	for len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Clear removes every entry.
func (c *CacheStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.order = c.order[:0]
}

// Stats returns the current size and the capacity.
func (c *CacheStore) Stats() schema.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return schema.CacheStats{Size: len(c.entries), MaxSize: c.maxEntries}
}

// Keys returns the cached keys from oldest to newest.
func (c *CacheStore) Keys() []schema.ResourceKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}
