package cache

import (
	"context"
	"sync"
	"time"

	"dlpgate/internal/core"
)

const (
	// DefaultLocalMaxEntries bounds the in-memory cache size.
	DefaultLocalMaxEntries = 4096

	// DefaultLocalTTL is how long a cached result stays valid.
	DefaultLocalTTL = 1 * time.Hour
)

// LocalCache implements Cache using an in-memory map.
// This is suitable for single-instance deployments.
type LocalCache struct {
	mu         sync.RWMutex
	entries    map[string]localEntry
	maxEntries int
	ttl        time.Duration
}

type localEntry struct {
	result    core.AnonymizationResult
	expiresAt time.Time
}

// NewLocalCache creates a new in-memory cache.
// Zero values fall back to the package defaults.
func NewLocalCache(maxEntries int, ttl time.Duration) *LocalCache {
	if maxEntries <= 0 {
		maxEntries = DefaultLocalMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultLocalTTL
	}
	return &LocalCache{
		entries:    make(map[string]localEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// Get retrieves a cached result, treating expired entries as misses.
func (c *LocalCache) Get(_ context.Context, key string) (*core.AnonymizationResult, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}

	result := entry.result
	return &result, nil
}

// Set stores a result. When the cache is full, expired entries are evicted
// first; if none are expired the whole map is reset rather than tracking
// recency, keeping the hot path allocation-free.
func (c *LocalCache) Set(_ context.Context, key string, result *core.AnonymizationResult) error {
	if result == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.maxEntries {
			c.entries = make(map[string]localEntry)
		}
	}

	c.entries[key] = localEntry{
		result:    *result,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Close is a no-op for the local cache.
func (c *LocalCache) Close() error {
	return nil
}
