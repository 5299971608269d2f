// Package cache provides an in-memory TTL cache for quotes and bar series.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// entry stores a cached value with its expiration time.
type entry struct {
	value    interface{}
	expireAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expireAt)
}

// Cache is a concurrency-safe in-memory cache with per-entry TTL.
// Expiry is lazy: entries are checked on read and never returned once
// expired. Entries are replaced, never mutated in place.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	defaultTTL time.Duration
	now        func() time.Time
}

// New creates a cache with the given default TTL.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// DefaultTTL returns the cache's default TTL.
func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Get returns the value stored under key, or false when the key is
// absent or expired. Expired entries are removed on read.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// replaced the entry with a fresh one.
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Put stores value under key with the given TTL. A non-positive TTL
// falls back to the cache default.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	c.entries[key] = &entry{
		value:    value,
		expireAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

// Delete removes the given keys.
func (c *Cache) Delete(keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

// Len returns the number of stored entries, including any not yet
// swept expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// QuoteKey builds the cache key for a quote request.
func QuoteKey(symbol string) string {
	return "quote:" + strings.ToUpper(symbol)
}

// BarsKey builds the cache key for a historical bars request. All
// parameters that affect the result are encoded so that logically
// different requests never collide.
func BarsKey(symbol, period, interval string) string {
	return fmt.Sprintf("bars:%s:%s:%s", strings.ToUpper(symbol), period, interval)
}
