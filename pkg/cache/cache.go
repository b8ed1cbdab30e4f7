// Package cache stores index responses between runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// when several runners or the API server share one cache, and [NullCache]
// when caching is disabled.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLRelease applies to release metadata. A published release's files
	// never change, so entries live long.
	TTLRelease = 7 * 24 * time.Hour

	// TTLIndex applies to project-level responses, which change whenever
	// a new version is published.
	TTLIndex = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and true on a hit. A miss is not an
	// error: it returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Close releases resources held by the cache.
	Close() error
}
