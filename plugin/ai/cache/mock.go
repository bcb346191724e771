package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockCacheService is a mock implementation of CacheService for testing.
// It counts calls and can be told to fail.
type MockCacheService struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry

	setErr        error
	invalidateErr error
	getDisabled   bool

	gets, sets, invalidations int
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMockCacheService creates a new MockCacheService.
func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		store: make(map[string]*cacheEntry),
	}
}

// Get retrieves a value from cache.
func (m *MockCacheService) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++

	if m.getDisabled {
		return nil, false
	}
	e, ok := m.store[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value in cache.
func (m *MockCacheService) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++

	if m.setErr != nil {
		return m.setErr
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	m.store[key] = &cacheEntry{value: value, expiresAt: expiresAt}
	return nil
}

// Invalidate invalidates cache entries.
func (m *MockCacheService) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++

	if m.invalidateErr != nil {
		return m.invalidateErr
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		for key := range m.store {
			if strings.HasPrefix(key, prefix) {
				delete(m.store, key)
			}
		}
	} else {
		delete(m.store, pattern)
	}
	return nil
}

// FailSets makes Set return err; nil restores normal behavior.
func (m *MockCacheService) FailSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// FailInvalidations makes Invalidate return err; nil restores normal behavior.
func (m *MockCacheService) FailInvalidations(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateErr = err
}

// DisableGets makes every Get miss.
func (m *MockCacheService) DisableGets(disabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getDisabled = disabled
}

// Keys returns the stored keys (for testing).
func (m *MockCacheService) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.store))
	for k := range m.store {
		keys = append(keys, k)
	}
	return keys
}

// Size returns the number of items in the cache (for testing).
func (m *MockCacheService) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Calls returns the number of Get, Set and Invalidate calls.
func (m *MockCacheService) Calls() (gets, sets, invalidations int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets, m.sets, m.invalidations
}

var _ CacheService = (*MockCacheService)(nil)
