package cache

import (
	"context"
	"testing"
	"time"
)

// TestCacheServiceContract runs the same contract against every implementation
// that stores values.
func TestCacheServiceContract(t *testing.T) {
	svc := NewService(ServiceConfig{Shards: 4, Capacity: 100, CleanupInterval: time.Hour})
	defer svc.Close()

	impls := map[string]CacheService{
		"Service": svc,
		"Mock":    NewMockCacheService(),
	}
	for name, impl := range impls {
		t.Run(name, func(t *testing.T) {
			runContract(t, impl)
		})
	}
}

func runContract(t *testing.T, svc CacheService) {
	ctx := context.Background()

	t.Run("Set_And_Get_Works", func(t *testing.T) {
		if err := svc.Set(ctx, "test-key", []byte("test-value"), time.Hour); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		result, ok := svc.Get(ctx, "test-key")
		if !ok {
			t.Fatal("expected key to exist")
		}
		if string(result) != "test-value" {
			t.Errorf("expected test-value, got %s", result)
		}
	})

	t.Run("Get_NonexistentKey_ReturnsFalse", func(t *testing.T) {
		if _, ok := svc.Get(ctx, "nonexistent-key"); ok {
			t.Error("expected nonexistent key to return false")
		}
	})

	t.Run("Set_OverwritesExisting", func(t *testing.T) {
		_ = svc.Set(ctx, "overwrite-key", []byte("value1"), time.Hour)
		_ = svc.Set(ctx, "overwrite-key", []byte("value2"), time.Hour)

		result, _ := svc.Get(ctx, "overwrite-key")
		if string(result) != "value2" {
			t.Errorf("expected value2, got %s", result)
		}
	})

	t.Run("TTL_Expiration", func(t *testing.T) {
		if err := svc.Set(ctx, "expiring-key", []byte("value"), time.Millisecond); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		if _, ok := svc.Get(ctx, "expiring-key"); ok {
			t.Error("expected key to be expired")
		}
	})

	t.Run("Invalidate_ExactKey", func(t *testing.T) {
		_ = svc.Set(ctx, "invalidate-exact", []byte("value"), time.Hour)
		if err := svc.Invalidate(ctx, "invalidate-exact"); err != nil {
			t.Fatalf("Invalidate failed: %v", err)
		}
		if _, ok := svc.Get(ctx, "invalidate-exact"); ok {
			t.Error("expected key to be invalidated")
		}
	})

	t.Run("Invalidate_WildcardPattern", func(t *testing.T) {
		for _, key := range []string{"emoctx:alice:support:standard:1", "emoctx:alice:casual:brief:2", "emoctx:alice:support:detailed:3"} {
			if err := svc.Set(ctx, key, []byte("bundle"), time.Hour); err != nil {
				t.Fatal(err)
			}
		}
		if err := svc.Set(ctx, "emoctx:alicia:support:standard:1", []byte("other"), time.Hour); err != nil {
			t.Fatal(err)
		}

		if err := svc.Invalidate(ctx, "emoctx:alice:*"); err != nil {
			t.Fatalf("Invalidate failed: %v", err)
		}

		for _, key := range []string{"emoctx:alice:support:standard:1", "emoctx:alice:casual:brief:2", "emoctx:alice:support:detailed:3"} {
			if _, ok := svc.Get(ctx, key); ok {
				t.Errorf("%s should be invalidated", key)
			}
		}
		if _, ok := svc.Get(ctx, "emoctx:alicia:support:standard:1"); !ok {
			t.Error("entries of other participants should remain")
		}
	})

	t.Run("Invalidate_NonexistentKey_NoError", func(t *testing.T) {
		if err := svc.Invalidate(ctx, "nonexistent"); err != nil {
			t.Errorf("Invalidate nonexistent key should not error: %v", err)
		}
	})

	t.Run("Set_EmptyValue", func(t *testing.T) {
		if err := svc.Set(ctx, "empty-value-key", []byte{}, time.Hour); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		result, ok := svc.Get(ctx, "empty-value-key")
		if !ok {
			t.Error("expected empty value to be stored")
		}
		if len(result) != 0 {
			t.Error("expected empty value")
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		done := make(chan bool)
		go func() {
			for i := 0; i < 100; i++ {
				_ = svc.Set(ctx, "concurrent-key", []byte("value"), time.Hour)
			}
			done <- true
		}()
		go func() {
			for i := 0; i < 100; i++ {
				svc.Get(ctx, "concurrent-key")
			}
			done <- true
		}()
		<-done
		<-done
	})
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	var c CacheService = NoopCache{}

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("noop cache must never hit")
	}
	if err := c.Invalidate(ctx, "k*"); err != nil {
		t.Errorf("Invalidate failed: %v", err)
	}
}
