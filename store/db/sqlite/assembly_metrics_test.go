package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/emocontext/store"
)

func TestAssemblyMetrics(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	hour := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	t.Run("Upsert accumulates counters", func(t *testing.T) {
		_, err := d.UpsertAssemblyMetrics(ctx, &store.UpsertAssemblyMetrics{
			HourBucket: hour, Goal: "support", RequestCount: 2, SuccessCount: 2,
			CacheHits: 1, TokenSum: 400, LatencySumMs: 30, LatencyP50Ms: 10, LatencyP95Ms: 20,
		})
		require.NoError(t, err)

		m, err := d.UpsertAssemblyMetrics(ctx, &store.UpsertAssemblyMetrics{
			HourBucket: hour, Goal: "support", RequestCount: 1, SuccessCount: 0,
			TokenSum: 100, LatencySumMs: 50, LatencyP50Ms: 12, LatencyP95Ms: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), m.RequestCount)
		assert.Equal(t, int64(2), m.SuccessCount)
		assert.Equal(t, int64(1), m.CacheHits)
		assert.Equal(t, int64(500), m.TokenSum)
		assert.Equal(t, int64(80), m.LatencySumMs)
		assert.Equal(t, int32(50), m.LatencyP95Ms)
		assert.True(t, m.HourBucket.Equal(hour))
	})

	t.Run("List filters by goal and range", func(t *testing.T) {
		_, err := d.UpsertAssemblyMetrics(ctx, &store.UpsertAssemblyMetrics{
			HourBucket: hour.Add(time.Hour), Goal: "celebrate", RequestCount: 1, SuccessCount: 1,
		})
		require.NoError(t, err)

		all, err := d.ListAssemblyMetrics(ctx, &store.FindAssemblyMetrics{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "celebrate", all[0].Goal)

		goal := "support"
		byGoal, err := d.ListAssemblyMetrics(ctx, &store.FindAssemblyMetrics{Goal: &goal})
		require.NoError(t, err)
		require.Len(t, byGoal, 1)

		start := hour.Add(30 * time.Minute)
		later, err := d.ListAssemblyMetrics(ctx, &store.FindAssemblyMetrics{StartTime: &start})
		require.NoError(t, err)
		require.Len(t, later, 1)
		assert.Equal(t, "celebrate", later[0].Goal)
	})

	t.Run("Delete before cutoff", func(t *testing.T) {
		cutoff := hour.Add(time.Minute)
		require.NoError(t, d.DeleteAssemblyMetrics(ctx, &store.DeleteAssemblyMetrics{BeforeTime: &cutoff}))

		all, err := d.ListAssemblyMetrics(ctx, &store.FindAssemblyMetrics{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "celebrate", all[0].Goal)

		assert.Error(t, d.DeleteAssemblyMetrics(ctx, &store.DeleteAssemblyMetrics{}))
	})
}
