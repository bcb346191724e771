// Package cache provides the cache service used to memoize assembled
// contexts. Keys are colon-separated; invalidation accepts a trailing
// wildcard so one call can drop every entry of a participant.
package cache

import (
	"context"
	"time"
)

// CacheService defines the cache service interface.
type CacheService interface {
	// Get retrieves a value from cache.
	// Returns: value, whether it exists
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in cache.
	// ttl: expiration time, <= 0 uses the backend default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate invalidates cache entries.
	// pattern: exact key, or prefix ending in * (emoctx:alice:*)
	Invalidate(ctx context.Context, pattern string) error
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
