package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ServiceConfig configures the cache service.
type ServiceConfig struct {
	Shards          int           // Number of LRU shards (default: 16)
	Capacity        int           // Maximum number of entries (default: 1000)
	DefaultTTL      time.Duration // Default TTL for entries (default: 5 minutes)
	CleanupInterval time.Duration // Interval for expired entry cleanup (default: 1 minute)
}

// DefaultServiceConfig returns default cache service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Shards:          defaultShards,
		Capacity:        defaultCapacity,
		DefaultTTL:      defaultTTL,
		CleanupInterval: time.Minute,
	}
}

// Service implements CacheService over a ShardedCache.
type Service struct {
	cache *ShardedCache

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	cleanupInterval time.Duration
}

// NewService creates a new cache service and starts its cleanup loop.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cache:           NewShardedCache(cfg.Shards, cfg.Capacity, cfg.DefaultTTL),
		ctx:             ctx,
		cancel:          cancel,
		cleanupInterval: cfg.CleanupInterval,
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Close stops the cleanup loop. Safe to call more than once.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

// Get retrieves a value from cache.
func (s *Service) Get(_ context.Context, key string) ([]byte, bool) {
	return s.cache.Get(key)
}

// Set stores a value in cache.
func (s *Service) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, value, ttl)
	return nil
}

// Invalidate invalidates cache entries matching the pattern.
func (s *Service) Invalidate(_ context.Context, pattern string) error {
	if n := s.cache.Invalidate(pattern); n > 0 {
		slog.Debug("cache entries invalidated", "pattern", pattern, "count", n)
	}
	return nil
}

// Size returns the number of entries in the cache.
func (s *Service) Size() int {
	return s.cache.Size()
}

// Clear removes all entries from the cache.
func (s *Service) Clear() {
	s.cache.Clear()
}

// Stats returns the cache counters.
func (s *Service) Stats() Stats {
	return s.cache.Stats()
}

func (s *Service) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n := s.cache.CleanupExpired(); n > 0 {
				slog.Debug("expired cache entries removed", "count", n)
			}
		}
	}
}

var _ CacheService = (*Service)(nil)
