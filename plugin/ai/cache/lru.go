package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// lruShard is one LRU partition with per-entry TTL. Each shard owns its lock.
type lruShard struct {
	capacity   int
	defaultTTL time.Duration
	mu         sync.Mutex

	items map[string]*entry
	order *list.List // front is most recently used
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	element   *list.Element
}

func newLRUShard(capacity int, defaultTTL time.Duration) *lruShard {
	return &lruShard{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*entry),
		order:      list.New(),
	}
}

func (c *lruShard) get(key string, now time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if now.After(e.expiresAt) {
		c.removeEntry(e)
		return nil, false
	}
	c.order.MoveToFront(e.element)
	return e.value, true
}

// set stores the value and returns the number of entries evicted.
func (c *lruShard) set(key string, value []byte, ttl time.Duration, now time.Time) int {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = now.Add(ttl)
		c.order.MoveToFront(e.element)
		return 0
	}

	evicted := 0
	for len(c.items) >= c.capacity && c.order.Len() > 0 {
		c.removeEntry(c.order.Back().Value.(*entry))
		evicted++
	}

	e := &entry{key: key, value: value, expiresAt: now.Add(ttl)}
	e.element = c.order.PushFront(e)
	c.items[key] = e
	return evicted
}

// invalidate removes the exact key, or every key with the prefix when the
// pattern ends in *.
func (c *lruShard) invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		if e, ok := c.items[pattern]; ok {
			c.removeEntry(e)
			return 1
		}
		return 0
	}

	count := 0
	for key, e := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeEntry(e)
			count++
		}
	}
	return count
}

func (c *lruShard) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *lruShard) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry)
	c.order.Init()
}

func (c *lruShard) cleanupExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []*entry
	for _, e := range c.items {
		if now.After(e.expiresAt) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		c.removeEntry(e)
	}
	return len(expired)
}

// removeEntry must be called with the lock held.
func (c *lruShard) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.items, e.key)
}
