// Package cache stores encoded design snapshots so an identical upload is
// answered without loading the design again.
//
// Three backends implement [Cache]:
//   - [FileCache]: a directory of JSON entries, used by the CLI
//   - [RedisCache]: a shared store for multi-instance servers
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer], which hashes the content of a design's files,
// so a cached snapshot is found again no matter what the files were called.
package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLDesign is how long an encoded snapshot stays cached. Entries are keyed
// by file content, so they never go stale; the TTL only bounds disk use.
const TTLDesign = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported as a miss, not as an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Fetch is Get for callers that treat a miss as a failure: it returns
// ErrCacheMiss instead of a false hit flag.
func Fetch(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if !hit {
		return nil, ErrCacheMiss
	}
	return data, nil
}
