package cache

import (
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	defaultShards   = 16
	defaultCapacity = 1000
	defaultTTL      = 5 * time.Minute
)

// ShardedCache spreads keys over independent LRU shards by xxhash so that
// lookups for different participants rarely contend on one lock.
type ShardedCache struct {
	shards []*lruShard
	now    func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewShardedCache creates a cache holding about capacity entries split
// across the given number of shards.
func NewShardedCache(shards, capacity int, ttl time.Duration) *ShardedCache {
	if shards <= 0 {
		shards = defaultShards
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if shards > capacity {
		shards = capacity
	}

	perShard := (capacity + shards - 1) / shards
	c := &ShardedCache{
		shards: make([]*lruShard, shards),
		now:    time.Now,
	}
	for i := range c.shards {
		c.shards[i] = newLRUShard(perShard, ttl)
	}
	return c
}

func (c *ShardedCache) shardFor(key string) *lruShard {
	return c.shards[xxhash.Sum64String(key)%uint64(len(c.shards))]
}

// Get retrieves a value from the cache.
func (c *ShardedCache) Get(key string) ([]byte, bool) {
	value, ok := c.shardFor(key).get(key, c.now())
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return value, ok
}

// Set stores a value in the cache.
func (c *ShardedCache) Set(key string, value []byte, ttl time.Duration) {
	if n := c.shardFor(key).set(key, value, ttl, c.now()); n > 0 {
		c.evictions.Add(int64(n))
	}
}

// Invalidate removes entries matching the pattern and returns the count.
// A prefix pattern has to visit every shard.
func (c *ShardedCache) Invalidate(pattern string) int {
	if len(pattern) == 0 || pattern[len(pattern)-1] != '*' {
		return c.shardFor(pattern).invalidate(pattern)
	}
	count := 0
	for _, s := range c.shards {
		count += s.invalidate(pattern)
	}
	return count
}

// CleanupExpired removes all expired entries and returns the count.
func (c *ShardedCache) CleanupExpired() int {
	now := c.now()
	count := 0
	for _, s := range c.shards {
		count += s.cleanupExpired(now)
	}
	return count
}

// Size returns the number of entries in the cache.
func (c *ShardedCache) Size() int {
	size := 0
	for _, s := range c.shards {
		size += s.size()
	}
	return size
}

// Clear removes all entries from the cache.
func (c *ShardedCache) Clear() {
	for _, s := range c.shards {
		s.clear()
	}
}

// ShardCount returns the number of shards.
func (c *ShardedCache) ShardCount() int {
	return len(c.shards)
}

// Stats returns the current counters.
func (c *ShardedCache) Stats() Stats {
	return Stats{
		Entries:   c.Size(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
