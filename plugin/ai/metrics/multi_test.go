package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out to every service", func(t *testing.T) {
		a := NewMockMetricsService()
		b := NewMockMetricsService()
		m := NewMultiMetrics(a, nil, b)

		m.RecordAssembly(ctx, "support", 10*time.Millisecond, 120, true)
		m.RecordStage(ctx, StageMood, time.Millisecond)
		m.RecordCacheLookup(ctx, "support", true)
		m.RecordOptimization(ctx, "size_reduction")

		for _, svc := range []*MockMetricsService{a, b} {
			assert.Len(t, svc.Assemblies(), 1)
			assert.Equal(t, []string{StageMood}, svc.Stages())
			assert.Equal(t, []bool{true}, svc.CacheLookups())
			assert.Equal(t, []string{"size_reduction"}, svc.Optimizations())
		}
	})

	t.Run("stats come from the first service", func(t *testing.T) {
		a := NewMockMetricsService()
		b := NewMockMetricsService()
		m := NewMultiMetrics(a, b)
		a.RecordAssembly(ctx, "support", time.Millisecond, 50, true)

		stats, err := m.GetStats(ctx, TimeRange{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.RequestCount)
	})

	t.Run("empty", func(t *testing.T) {
		stats, err := NewMultiMetrics().GetStats(ctx, TimeRange{})
		require.NoError(t, err)
		assert.Zero(t, stats.RequestCount)
	})
}
