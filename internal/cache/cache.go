/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package cache provides analysis result caching for sqlshape.

Analysis Cache Overview:
========================

Analyzing a statement is cheap, but tools that analyze the same statements
over and over (editors, code generators, the shell) benefit from keeping
results around. The cache stores values under a string key, normally
Key(schemaFingerprint, statement), so a changed schema never serves a
stale result.

Features:
=========

  - LRU eviction when cache is full
  - TTL-based expiration
  - Per-table invalidation
  - Thread-safe operations
  - Hit, miss and eviction statistics

The LRU and TTL bookkeeping is done by hashicorp/golang-lru's expirable
LRU. The cache adds the table index used for invalidation on top.

Usage Example:
==============

	c := cache.New[*sql.Analysis](cache.Config{
		MaxEntries: 1000,
		TTL:        5 * time.Minute,
		Enabled:    true,
	})

	key := cache.Key(schema.Fingerprint(), "SELECT * FROM users")
	if a, ok := c.Get(key); ok {
		return a
	}
	a := analyze(...)
	c.Set(key, a, []string{"users"})
*/
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Config holds the configuration for the cache.
type Config struct {
	// MaxEntries is the maximum number of cached values.
	// When exceeded, the least recently used entries are evicted.
	MaxEntries int

	// TTL is the time-to-live for cached entries.
	TTL time.Duration

	// Enabled controls whether caching is active.
	Enabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxEntries: 1000,
		TTL:        5 * time.Minute,
		Enabled:    true,
	}
}

// Key builds a cache key from a schema fingerprint and a statement.
func Key(fingerprint, statement string) string {
	return fingerprint + "\x00" + statement
}

// Cache caches values with LRU eviction and TTL expiration.
type Cache[V any] struct {
	config Config

	lru *expirable.LRU[string, V]

	// mu guards the table index and the enabled flag. It is never taken
	// from the eviction callback, which runs under the LRU's own lock.
	mu sync.RWMutex

	// tableIndex maps table names to keys that reference them.
	tableIndex map[string]map[string]struct{}
	keyTables  map[string][]string

	// evicted collects keys dropped by the LRU until the next Set prunes
	// them from the table index.
	evictMu sync.Mutex
	evicted []string

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a new Cache with the given configuration.
func New[V any](config Config) *Cache[V] {
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}

	c := &Cache[V]{
		config:     config,
		tableIndex: make(map[string]map[string]struct{}),
		keyTables:  make(map[string][]string),
	}
	c.lru = expirable.NewLRU[string, V](config.MaxEntries, c.onEvict, config.TTL)
	return c
}

// onEvict is called by the LRU for every entry it drops.
func (c *Cache[V]) onEvict(key string, _ V) {
	c.evictions.Add(1)
	c.evictMu.Lock()
	c.evicted = append(c.evicted, key)
	c.evictMu.Unlock()
}

// Get retrieves a cached value.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return v, true
}

// Set caches a value. tables lists the tables the value depends on.
func (c *Cache[V]) Set(key string, value V, tables []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.config.Enabled {
		return
	}

	c.lru.Add(key, value)
	c.pruneEvicted()

	c.unindex(key)
	c.keyTables[key] = tables
	for _, table := range tables {
		if c.tableIndex[table] == nil {
			c.tableIndex[table] = make(map[string]struct{})
		}
		c.tableIndex[table][key] = struct{}{}
	}
}

// pruneEvicted drops evicted keys from the table index (must hold mu).
func (c *Cache[V]) pruneEvicted() {
	c.evictMu.Lock()
	evicted := c.evicted
	c.evicted = nil
	c.evictMu.Unlock()

	for _, key := range evicted {
		if c.lru.Contains(key) {
			// Re-added after it was evicted.
			continue
		}
		c.unindex(key)
	}
}

// unindex removes key from the table index (must hold mu).
func (c *Cache[V]) unindex(key string) {
	for _, table := range c.keyTables[key] {
		if keys, ok := c.tableIndex[table]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tableIndex, table)
			}
		}
	}
	delete(c.keyTables, key)
}

// Invalidate removes all cached values that reference the given table and
// returns how many were removed.
func (c *Cache[V]) Invalidate(table string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, ok := c.tableIndex[table]
	if !ok {
		return 0
	}

	removed := 0
	for key := range keys {
		if c.lru.Remove(key) {
			removed++
		}
		for _, other := range c.keyTables[key] {
			if other != table {
				delete(c.tableIndex[other], key)
				if len(c.tableIndex[other]) == 0 {
					delete(c.tableIndex, other)
				}
			}
		}
		delete(c.keyTables, key)
	}
	delete(c.tableIndex, table)
	return removed
}

// InvalidateAll clears the entire cache.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
	c.tableIndex = make(map[string]map[string]struct{})
	c.keyTables = make(map[string][]string)

	c.evictMu.Lock()
	c.evicted = nil
	c.evictMu.Unlock()
}

// Stats holds cache statistics. Evictions counts every entry the cache
// dropped, whether for capacity, expiry or invalidation.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Entries    int
	MaxEntries int
	HitRate    float64
}

// Stats returns current cache statistics.
func (c *Cache[V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:       hits,
		Misses:     misses,
		Evictions:  c.evictions.Load(),
		Entries:    c.lru.Len(),
		MaxEntries: c.config.MaxEntries,
		HitRate:    hitRate,
	}
}

// Enabled reports whether the cache is active.
func (c *Cache[V]) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Enabled
}

// SetEnabled enables or disables the cache. Disabling keeps the entries;
// they are served again once the cache is re-enabled.
func (c *Cache[V]) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Enabled = enabled
}
