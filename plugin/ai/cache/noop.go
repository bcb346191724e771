package cache

import (
	"context"
	"time"
)

// NoopCache never stores anything. Use it to disable caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopCache) Invalidate(context.Context, string) error { return nil }

var _ CacheService = NoopCache{}
