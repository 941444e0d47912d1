// Package cache provides a cache abstraction for screening results.
// Supports both local (in-memory) and Redis backends for multi-instance
// deployments. Only detection output is cached; routing is always
// re-evaluated so a policy change takes effect immediately.
package cache

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"dlpgate/internal/core"
)

// Cache defines the interface for screening-result storage.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a cached detection result by key.
	// Returns nil, nil if the key is not cached.
	Get(ctx context.Context, key string) (*core.AnonymizationResult, error)

	// Set stores a detection result under the key.
	Set(ctx context.Context, key string, result *core.AnonymizationResult) error

	// Close releases any resources held by the cache.
	Close() error
}

// Key derives the cache key for a text blob. xxhash is not a cryptographic
// hash; it is used only as a fast cache key, never as the audit content hash.
func Key(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}
