// Package cache is a small TTL map used for per-user card listings.
package cache

import (
	"sync"
	"time"
)

// Entries expire lazily: reads skip stale values, writes prune them once
// the map has grown past pruneThreshold.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

const pruneThreshold = 512

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	ent, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(ent.expiresAt) {
		return nil, false
	}

	return ent.value, true
}

func (c *Cache) Set(key string, value any) {
	now := time.Now()

	c.mu.Lock()

	if len(c.entries) >= pruneThreshold {
		c.pruneLocked(now)
	}

	c.entries[key] = cacheEntry{value: value, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// pruneLocked drops expired entries. Callers hold the write lock.
func (c *Cache) pruneLocked(now time.Time) {
	for key, ent := range c.entries {
		if now.After(ent.expiresAt) {
			delete(c.entries, key)
		}
	}
}
