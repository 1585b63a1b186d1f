// Package storage defines the read-only interests lookup and the score cache
// consumed by the business methods.
package storage

import (
	"context"
	"time"
)

// Store is the backing lookup for client interests plus a TTL cache for
// computed scores. Cache misses and cache failures are never fatal: callers
// fall back to computing the value.
type Store interface {
	// Interests returns the interest tags for a client id. Unknown ids
	// yield an empty list, not an error.
	Interests(ctx context.Context, clientID int) ([]string, error)

	// CacheGet returns a previously cached score and whether it is still live.
	CacheGet(ctx context.Context, key string) (float64, bool)

	// CacheSet stores a score under the key for the given TTL.
	CacheSet(ctx context.Context, key string, score float64, ttl time.Duration)
}
