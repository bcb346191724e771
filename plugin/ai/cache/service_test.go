package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedCache_BasicOperations(t *testing.T) {
	cache := NewShardedCache(4, 100, time.Minute)

	t.Run("SetAndGet", func(t *testing.T) {
		cache.Set("key1", []byte("value1"), 0)

		val, ok := cache.Get("key1")
		assert.True(t, ok)
		assert.Equal(t, []byte("value1"), val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := cache.Get("nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		cache.Set("key2", []byte("original"), 0)
		cache.Set("key2", []byte("updated"), 0)

		val, ok := cache.Get("key2")
		assert.True(t, ok)
		assert.Equal(t, []byte("updated"), val)
	})

	t.Run("Stats", func(t *testing.T) {
		stats := cache.Stats()
		assert.Equal(t, int64(2), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.Equal(t, 2, stats.Entries)
		assert.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)
	})
}

func TestShardedCache_Defaults(t *testing.T) {
	cache := NewShardedCache(0, 0, 0)
	assert.Equal(t, defaultShards, cache.ShardCount())

	small := NewShardedCache(16, 4, time.Minute)
	assert.Equal(t, 4, small.ShardCount())
}

func TestShardedCache_Expiration(t *testing.T) {
	cache := NewShardedCache(2, 100, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("expiring", []byte("value"), 50*time.Millisecond)
	cache.Set("lasting", []byte("value"), 0)

	val, ok := cache.Get("expiring")
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), val)

	now = now.Add(time.Second)
	_, ok = cache.Get("expiring")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, cache.CleanupExpired())
	assert.Equal(t, 0, cache.Size())
}

func TestShardedCache_Eviction(t *testing.T) {
	// A single shard makes eviction order observable.
	cache := NewShardedCache(1, 3, time.Minute)

	cache.Set("key1", []byte("1"), 0)
	cache.Set("key2", []byte("2"), 0)
	cache.Set("key3", []byte("3"), 0)
	assert.Equal(t, 3, cache.Size())

	cache.Get("key1")
	cache.Set("key4", []byte("4"), 0)
	assert.Equal(t, 3, cache.Size())

	_, ok := cache.Get("key2")
	assert.False(t, ok)
	_, ok = cache.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestShardedCache_Invalidate(t *testing.T) {
	cache := NewShardedCache(8, 100, time.Minute)

	t.Run("ExactMatch", func(t *testing.T) {
		cache.Set("emoctx:1", []byte("1"), 0)
		cache.Set("emoctx:2", []byte("2"), 0)

		assert.Equal(t, 1, cache.Invalidate("emoctx:1"))

		_, ok := cache.Get("emoctx:1")
		assert.False(t, ok)
		_, ok = cache.Get("emoctx:2")
		assert.True(t, ok)
	})

	t.Run("WildcardAcrossShards", func(t *testing.T) {
		cache.Clear()
		for i := 0; i < 20; i++ {
			cache.Set(fmt.Sprintf("emoctx:alice:goal%d", i), []byte("x"), 0)
		}
		cache.Set("emoctx:bob:goal", []byte("y"), 0)

		assert.Equal(t, 20, cache.Invalidate("emoctx:alice:*"))
		assert.Equal(t, 1, cache.Size())
	})
}

func TestShardedCache_ConcurrentAccess(t *testing.T) {
	cache := NewShardedCache(16, 1000, time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			cache.Set(fmt.Sprintf("key-%d", n%26), []byte{byte(n)}, 0)
		}(i)
		go func(n int) {
			defer wg.Done()
			cache.Get(fmt.Sprintf("key-%d", n%26))
		}(i)
	}

	wg.Wait()
	assert.LessOrEqual(t, cache.Size(), 26)
}

func TestService_BasicOperations(t *testing.T) {
	svc := NewService(ServiceConfig{
		Capacity:        100,
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Hour,
	})
	defer svc.Close()

	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, svc.Set(ctx, "key1", []byte("value1"), 0))

		val, ok := svc.Get(ctx, "key1")
		assert.True(t, ok)
		assert.Equal(t, []byte("value1"), val)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, svc.Set(ctx, "emoctx:alice:data", []byte("data"), 0))
		require.NoError(t, svc.Invalidate(ctx, "emoctx:alice:*"))

		_, ok := svc.Get(ctx, "emoctx:alice:data")
		assert.False(t, ok)
	})

	t.Run("Clear", func(t *testing.T) {
		svc.Clear()
		assert.Equal(t, 0, svc.Size())
		assert.Equal(t, 0, svc.Stats().Entries)
	})
}

func TestService_Close(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	svc.Close()
	svc.Close()
}

func TestService_CleanupExpired(t *testing.T) {
	svc := NewService(ServiceConfig{
		Capacity:        100,
		DefaultTTL:      50 * time.Millisecond,
		CleanupInterval: 30 * time.Millisecond,
	})
	defer svc.Close()

	ctx := context.Background()
	_ = svc.Set(ctx, "temp", []byte("data"), 50*time.Millisecond)
	assert.Equal(t, 1, svc.Size())

	assert.Eventually(t, func() bool { return svc.Size() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMockCacheService_Failures(t *testing.T) {
	ctx := context.Background()
	mock := NewMockCacheService()

	mock.FailSets(errors.New("backend down"))
	assert.Error(t, mock.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, 0, mock.Size())

	mock.FailSets(nil)
	require.NoError(t, mock.Set(ctx, "k", []byte("v"), 0))

	mock.DisableGets(true)
	_, ok := mock.Get(ctx, "k")
	assert.False(t, ok)

	mock.FailInvalidations(errors.New("backend down"))
	assert.Error(t, mock.Invalidate(ctx, "k"))

	gets, sets, invalidations := mock.Calls()
	assert.Equal(t, 1, gets)
	assert.Equal(t, 2, sets)
	assert.Equal(t, 1, invalidations)
	assert.Equal(t, []string{"k"}, mock.Keys())
}
