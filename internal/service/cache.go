package service

import (
	"sync"
	"time"
)

// cacheTTL bounds how long a cached feed page may be served. It is kept
// well under the signed URL lifetime so a cached page never carries an
// expired image grant.
const cacheTTL = 5 * time.Minute

// ViewCache holds rendered feed pages per owner. Every mutation to an
// owner's prompts, tags, or images calls InvalidateOwner, so cached
// pages only outlive the TTL when nothing changed.
type ViewCache struct {
	mu      sync.Mutex
	entries map[string]map[string]cacheEntry // ownerID -> key -> entry
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// NewViewCache creates an empty cache.
func NewViewCache() *ViewCache {
	return &ViewCache{
		entries: make(map[string]map[string]cacheEntry),
	}
}

// Get returns the cached value for (ownerID, key), or false when the
// entry is absent or expired.
func (c *ViewCache) Get(ownerID, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owned, ok := c.entries[ownerID]
	if !ok {
		return nil, false
	}
	e, ok := owned[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(owned, key)
		return nil, false
	}
	return e.value, true
}

// Put stores a value under (ownerID, key).
func (c *ViewCache) Put(ownerID, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owned, ok := c.entries[ownerID]
	if !ok {
		owned = make(map[string]cacheEntry)
		c.entries[ownerID] = owned
	}
	owned[key] = cacheEntry{value: value, expires: time.Now().Add(cacheTTL)}
}

// InvalidateOwner drops every cached page for one owner. Other owners'
// entries are untouched.
func (c *ViewCache) InvalidateOwner(ownerID string) {
	c.mu.Lock()
	delete(c.entries, ownerID)
	c.mu.Unlock()
}
