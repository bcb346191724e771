package context

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/emocontext/internal/errors"
	"github.com/hrygo/emocontext/plugin/ai/cache"
	"github.com/hrygo/emocontext/plugin/ai/memory"
	"github.com/hrygo/emocontext/plugin/ai/metrics"
	"github.com/hrygo/emocontext/plugin/ai/mood"
	"github.com/hrygo/emocontext/plugin/ai/timeline"
)

func TestAssembleContext_Empty(t *testing.T) {
	svc := NewService(DefaultConfig())

	b, err := svc.AssembleContext(context.Background(), nil, "alice", "")
	require.NoError(t, err)

	assert.Equal(t, "alice", b.ParticipantID)
	assert.Equal(t, 5.0, b.MoodContext.CurrentMood.Score)
	assert.Equal(t, memory.StatusEmpty, b.MoodContext.Status)
	assert.Equal(t, timeline.NoDataSummary, b.TimelineSummary.RelationshipSummary)
	assert.Empty(t, b.TimelineSummary.RecentEvents)
	assert.Empty(t, b.Vocabulary.Themes)
	assert.Equal(t, []string{"neutral"}, b.Vocabulary.MoodDescriptors)
	assert.Equal(t, "balanced", b.Recommendations.Tone)
	assert.Equal(t, "supportive", b.Recommendations.Approach)
	assert.Empty(t, b.Optimization.AppliedOptimizations)
	assert.Positive(t, b.Optimization.TokenCount)

	assert.Less(t, svc.ValidateContextQuality(b), 0.5)
	assert.Equal(t, b.Optimization.QualityMetrics.Score, svc.ValidateContextQuality(b))
}

func TestAssembleContext_Populated(t *testing.T) {
	svc := NewService(DefaultConfig())
	records := richHistory(8)

	b, err := svc.AssembleContext(context.Background(), records, "alice", "support")
	require.NoError(t, err)

	assert.Equal(t, "support", b.ConversationGoal)
	assert.Equal(t, memory.StatusOK, b.MoodContext.Status)
	assert.Equal(t, memory.StatusOK, b.TimelineSummary.Status)
	assert.Equal(t, memory.StatusOK, b.Vocabulary.Status)
	assert.NotEmpty(t, b.TimelineSummary.KeyMoments)
	assert.InDelta(t, 0.95, b.Optimization.RelevanceScore, 0.001)

	quality := svc.ValidateContextQuality(b)
	assert.Greater(t, quality, 0.5)
	assert.LessOrEqual(t, quality, 1.0)
}

func TestAssembleContext_Relevance(t *testing.T) {
	svc := NewService(DefaultConfig())
	records := []memory.Record{
		testRecord("a1", 0, 6, 5, "alice"),
		testRecord("a2", 1, 6, 5, "alice"),
		testRecord("b1", 2, 6, 5, "bob"),
	}
	lowConfidence := testRecord("a3", 3, 6, 5, "alice")
	lowConfidence.Processing.Confidence = 0.1
	records = append(records, lowConfidence)

	b, err := svc.AssembleContext(context.Background(), records, "alice", "")
	require.NoError(t, err)

	// Two of four valid records pass: fraction 0.5, quality 0.9.
	assert.InDelta(t, 0.7, b.Optimization.RelevanceScore, 0.001)
	assert.Len(t, b.TimelineSummary.RecentEvents, 2)

	t.Run("Invalid records are skipped", func(t *testing.T) {
		broken := testRecord("", 4, 6, 5, "alice")
		b2, err := svc.AssembleContext(context.Background(), append(records, broken), "alice", "")
		require.NoError(t, err)
		assert.Len(t, b2.TimelineSummary.RecentEvents, 2)
	})
}

func TestAssembleContext_CacheIdempotence(t *testing.T) {
	ctx := context.Background()
	mockCache := cache.NewMockCacheService()
	leaves := newCountingLeaves()
	svc := leaves.install(NewService(DefaultConfig()).WithCache(mockCache))
	records := richHistory(12)

	first, err := svc.AssembleContext(ctx, records, "alice", "support")
	require.NoError(t, err)
	second, err := svc.AssembleContext(ctx, records, "alice", "support")
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Empty(t, cmp.Diff(first, second))
	assert.Equal(t, [3]int64{1, 1, 1}, leaves.calls())

	t.Run("Different goal recomputes", func(t *testing.T) {
		_, err := svc.AssembleContext(ctx, records, "alice", "celebrate")
		require.NoError(t, err)
		assert.Equal(t, [3]int64{2, 2, 2}, leaves.calls())
	})

	t.Run("New record changes the fingerprint", func(t *testing.T) {
		grown := append(append([]memory.Record{}, records...), testRecord("new", 100, 7, 5, "alice"))
		_, err := svc.AssembleContext(ctx, grown, "alice", "support")
		require.NoError(t, err)
		assert.Equal(t, [3]int64{3, 3, 3}, leaves.calls())
	})

	t.Run("Input order does not matter", func(t *testing.T) {
		reversed := make([]memory.Record, len(records))
		for i := range records {
			reversed[len(records)-1-i] = records[i]
		}
		_, err := svc.AssembleContext(ctx, reversed, "alice", "support")
		require.NoError(t, err)
		assert.Equal(t, [3]int64{3, 3, 3}, leaves.calls())
	})

	stats := svc.GetStats()
	assert.Equal(t, int64(5), stats.TotalAssemblies)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Positive(t, stats.AverageTokens)
}

func TestAssembleContext_CacheFailure(t *testing.T) {
	ctx := context.Background()
	mockCache := cache.NewMockCacheService()
	mockCache.FailSets(fmt.Errorf("cache backend down"))
	leaves := newCountingLeaves()
	svc := leaves.install(NewService(DefaultConfig()).WithCache(mockCache))
	records := richHistory(4)

	for i := 0; i < 2; i++ {
		b, err := svc.AssembleContext(ctx, records, "alice", "")
		require.NoError(t, err)
		require.NotNil(t, b)
	}
	assert.Equal(t, [3]int64{2, 2, 2}, leaves.calls())
	assert.Zero(t, mockCache.Size())

	t.Run("Undecodable entry is recomputed", func(t *testing.T) {
		mockCache.FailSets(nil)
		key := CacheKey("alice", "", DetailStandard, 0, Fingerprint(records))
		require.NoError(t, mockCache.Set(ctx, key, []byte("{not json"), time.Minute))

		b, err := svc.AssembleContext(ctx, records, "alice", "")
		require.NoError(t, err)
		assert.Equal(t, memory.StatusOK, b.MoodContext.Status)
		assert.Equal(t, [3]int64{3, 3, 3}, leaves.calls())
	})
}

func TestAssembleContext_Cancellation(t *testing.T) {
	mockCache := cache.NewMockCacheService()
	leaves := newCountingLeaves()
	svc := leaves.install(NewService(DefaultConfig()).WithCache(mockCache))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := svc.AssembleContext(ctx, richHistory(5), "alice", "")
	require.Error(t, err)
	assert.Nil(t, b)
	assert.True(t, errors.IsCode(err, errors.ErrCodeContextCanceled))
	assert.Zero(t, mockCache.Size())
	assert.Equal(t, [3]int64{0, 0, 0}, leaves.calls())
}

func TestAssembleContext_TokenBudget(t *testing.T) {
	svc := NewService(DefaultConfig())
	records := richHistory(20)

	b, err := svc.AssembleRecords(context.Background(), records, &AssembleRequest{
		ParticipantID: "alice",
		MaxTokens:     300,
	})
	require.NoError(t, err)
	require.NotEmpty(t, b.Optimization.AppliedOptimizations)
	assert.Equal(t, OptSizeReduction, b.Optimization.AppliedOptimizations[0])
	assert.Equal(t, int64(1), svc.GetStats().Optimized)
}

func TestAssemble_Provider(t *testing.T) {
	ctx := context.Background()

	t.Run("Records from provider", func(t *testing.T) {
		provider := memory.NewMockRecordProvider(richHistory(6)...)
		svc := NewService(DefaultConfig()).WithProvider(provider)

		b, err := svc.Assemble(ctx, &AssembleRequest{ParticipantID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, memory.StatusOK, b.MoodContext.Status)
		assert.Equal(t, int64(1), provider.Calls())
	})

	t.Run("Provider failure degrades to empty history", func(t *testing.T) {
		provider := memory.NewMockRecordProvider()
		provider.SetError(fmt.Errorf("store offline"))
		svc := NewService(DefaultConfig()).WithProvider(provider)

		b, err := svc.Assemble(ctx, &AssembleRequest{ParticipantID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, memory.StatusEmpty, b.MoodContext.Status)
		assert.Equal(t, timeline.NoDataSummary, b.TimelineSummary.RelationshipSummary)
	})

	t.Run("No provider", func(t *testing.T) {
		b, err := NewService(DefaultConfig()).Assemble(ctx, &AssembleRequest{ParticipantID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, memory.StatusEmpty, b.Vocabulary.Status)
	})

	t.Run("Nil request", func(t *testing.T) {
		_, err := NewService(DefaultConfig()).Assemble(ctx, nil)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	})
}

func TestAssembleContext_DetailLevel(t *testing.T) {
	ctx := context.Background()
	mockCache := cache.NewMockCacheService()
	svc := NewService(DefaultConfig()).WithCache(mockCache)
	records := richHistory(6)

	for _, level := range []DetailLevel{DetailBrief, DetailStandard, DetailDetailed} {
		_, err := svc.AssembleRecords(ctx, records, &AssembleRequest{ParticipantID: "alice", DetailLevel: level})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, mockCache.Size())
}

func TestInvalidateParticipant(t *testing.T) {
	ctx := context.Background()
	mockCache := cache.NewMockCacheService()
	svc := NewService(DefaultConfig()).WithCache(mockCache)

	_, err := svc.AssembleContext(ctx, richHistory(3), "alice", "")
	require.NoError(t, err)
	_, err = svc.AssembleContext(ctx, []memory.Record{testRecord("b", 1, 5, 5, "bob")}, "bob", "")
	require.NoError(t, err)
	require.Equal(t, 2, mockCache.Size())

	require.NoError(t, svc.InvalidateParticipant(ctx, "alice"))
	assert.Equal(t, 1, mockCache.Size())

	err = svc.InvalidateParticipant(ctx, "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	mockCache.FailInvalidations(fmt.Errorf("down"))
	err = svc.InvalidateParticipant(ctx, "bob")
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheUnavailable))
}

func TestAssembleContext_Metrics(t *testing.T) {
	ctx := context.Background()
	sink := metrics.NewMockMetricsService()
	svc := NewService(DefaultConfig()).
		WithCache(cache.NewMockCacheService()).
		WithMetrics(sink)
	records := richHistory(20)

	_, err := svc.AssembleRecords(ctx, records, &AssembleRequest{ParticipantID: "alice", MaxTokens: 300})
	require.NoError(t, err)
	_, err = svc.AssembleRecords(ctx, records, &AssembleRequest{ParticipantID: "alice", MaxTokens: 300})
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true}, sink.CacheLookups())
	assert.ElementsMatch(t,
		[]string{metrics.StageMood, metrics.StageTimeline, metrics.StageVocabulary, metrics.StageOptimize},
		sink.Stages())
	assert.Contains(t, sink.Optimizations(), OptSizeReduction)

	assemblies := sink.Assemblies()
	require.Len(t, assemblies, 2)
	assert.Equal(t, "default", assemblies[0].Goal)
	assert.True(t, assemblies[1].Success)
}

func TestAssembleContext_RecommendationsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeRecommendations = false
	svc := NewService(cfg)

	records := make([]memory.Record, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, testRecord(fmt.Sprintf("low%d", i), i, 2, 5, "alice"))
	}
	b, err := svc.AssembleContext(context.Background(), records, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRecommendations(), b.Recommendations)
}

func TestRecommend(t *testing.T) {
	withMood := func(score float64, direction mood.TrendDirection) *mood.Context {
		return &mood.Context{
			CurrentMood: mood.CurrentMood{Score: score, Confidence: 0.8},
			MoodTrend:   mood.Trend{Direction: direction},
			Status:      memory.StatusOK,
		}
	}
	withDeltas := func(types ...memory.MoodDeltaType) *timeline.Timeline {
		tl := &timeline.Timeline{Status: memory.StatusOK}
		for i, dt := range types {
			tl.RecentEvents = append(tl.RecentEvents, timeline.Event{
				RecordID:  fmt.Sprintf("e%d", i),
				Timestamp: baseTime.Add(time.Duration(i) * time.Hour),
				DeltaType: dt,
			})
		}
		return tl
	}

	tests := []struct {
		name     string
		mood     *mood.Context
		timeline *timeline.Timeline
		tone     string
		approach string
		avoid    []string
		length   string
	}{
		{"nil", nil, nil, "balanced", "supportive", []string{}, LengthModerate},
		{"empty", mood.Empty(), timeline.Empty(), "balanced", "supportive", []string{}, LengthModerate},
		{"low", withMood(3, mood.TrendDeclining), nil, "supportive", "empathetic", []string{"criticism", "complex topics"}, LengthModerate},
		{"high", withMood(8, mood.TrendImproving), nil, "positive", "celebratory", []string{}, LengthModerate},
		{"middle", withMood(5.5, mood.TrendStable), nil, "balanced", "supportive", []string{}, LengthModerate},
		{"volatile", withMood(5.5, mood.TrendVolatile), nil, "balanced", "supportive", []string{"complex topics"}, LengthBrief},
		{"low volatile", withMood(2, mood.TrendVolatile), nil, "supportive", "empathetic", []string{"criticism", "complex topics"}, LengthBrief},
		{
			"timeline declines lower the tone",
			withMood(5.5, mood.TrendStable),
			withDeltas(memory.DeltaCelebration, memory.DeltaDecline, memory.DeltaDecline),
			"supportive", "empathetic", []string{"criticism", "complex topics"}, LengthModerate,
		},
		{
			"declines override high mood",
			withMood(8, mood.TrendStable),
			withDeltas(memory.DeltaDecline, memory.DeltaPlateau, memory.DeltaDecline),
			"supportive", "empathetic", []string{"criticism", "complex topics"}, LengthModerate,
		},
		{
			"timeline swings shorten responses",
			withMood(5.5, mood.TrendStable),
			withDeltas(memory.DeltaMoodRepair, memory.DeltaDecline, memory.DeltaCelebration),
			"balanced", "supportive", []string{"complex topics"}, LengthBrief,
		},
		{
			"old declines fall outside the signal window",
			withMood(5.5, mood.TrendStable),
			withDeltas(memory.DeltaDecline, memory.DeltaDecline, memory.DeltaCelebration, memory.DeltaCelebration,
				memory.DeltaCelebration, memory.DeltaCelebration, memory.DeltaCelebration),
			"balanced", "supportive", []string{}, LengthModerate,
		},
		{
			"timeline only",
			nil,
			withDeltas(memory.DeltaDecline, memory.DeltaDecline),
			"supportive", "empathetic", []string{"criticism", "complex topics"}, LengthModerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(tt.mood, tt.timeline)
			assert.Equal(t, tt.tone, rec.Tone)
			assert.Equal(t, tt.approach, rec.Approach)
			assert.Equal(t, tt.avoid, rec.Avoid)
			assert.Equal(t, tt.length, rec.ResponseLength)
		})
	}
}
