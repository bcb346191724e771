package metrics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hrygo/emocontext/store"
)

// ErrMetricsNotConfigured is returned when metrics persistence is not configured.
var ErrMetricsNotConfigured = errors.New("metrics persistence not configured")

// Service implements MetricsService with in-memory aggregation and optional
// persistence to the store.
type Service struct {
	store      *store.Store
	aggregator *Aggregator
	persister  *Persister
}

// NewService creates a new metrics service.
// If store is nil, metrics will only be aggregated in memory (no persistence).
func NewService(s *store.Store, cfg PersisterConfig) *Service {
	aggregator := NewAggregator()

	svc := &Service{
		store:      s,
		aggregator: aggregator,
	}

	if s != nil {
		svc.persister = NewPersister(s, aggregator, cfg)
		svc.persister.Start()
	} else {
		slog.Warn("metrics service initialized without store (persistence disabled)")
	}

	return svc
}

// Close stops the metrics service and flushes remaining data.
func (s *Service) Close() {
	if s.persister != nil {
		s.persister.Close()
	}
}

func (s *Service) RecordAssembly(_ context.Context, goal string, latency time.Duration, tokens int, success bool) {
	s.aggregator.RecordAssembly(goal, latency, tokens, success)
}

func (s *Service) RecordStage(_ context.Context, stage string, latency time.Duration) {
	s.aggregator.RecordStage(stage, latency)
}

func (s *Service) RecordCacheLookup(_ context.Context, goal string, hit bool) {
	s.aggregator.RecordCacheLookup(goal, hit)
}

func (s *Service) RecordOptimization(_ context.Context, name string) {
	s.aggregator.RecordOptimization(name)
}

// GetStats merges in-memory stats with persisted rows inside timeRange.
// Latency percentiles reflect in-memory data only.
func (s *Service) GetStats(ctx context.Context, timeRange TimeRange) (*PipelineMetrics, error) {
	stats := s.aggregator.GetCurrentStats()

	if s.store == nil {
		return stats, nil
	}

	find := &store.FindAssemblyMetrics{}
	if !timeRange.Start.IsZero() {
		find.StartTime = &timeRange.Start
	}
	if !timeRange.End.IsZero() {
		find.EndTime = &timeRange.End
	}
	rows, err := s.store.ListAssemblyMetrics(ctx, find)
	if err != nil {
		slog.Warn("failed to query persisted assembly metrics", "error", err)
		return stats, nil
	}
	if len(rows) == 0 {
		return stats, nil
	}

	totals := s.aggregator.rawGoalTotals()
	for _, row := range rows {
		t, ok := totals[row.Goal]
		if !ok {
			t = &goalTotals{}
			totals[row.Goal] = t
		}
		t.add(goalTotals{
			requests:   row.RequestCount,
			success:    row.SuccessCount,
			cacheHits:  row.CacheHits,
			tokens:     row.TokenSum,
			latencySum: row.LatencySumMs,
		})
	}

	merged := newPipelineMetrics()
	merged.fill(totals)
	merged.LatencyP50 = stats.LatencyP50
	merged.LatencyP95 = stats.LatencyP95
	merged.StageStats = stats.StageStats
	merged.Optimizations = stats.Optimizations
	return merged, nil
}

// Flush forces an immediate flush of completed hours to the database.
func (s *Service) Flush(ctx context.Context) error {
	if s.persister == nil {
		return ErrMetricsNotConfigured
	}
	return s.persister.Flush(ctx)
}

// HasPersistence returns true if metrics persistence is enabled.
func (s *Service) HasPersistence() bool {
	return s.persister != nil
}

var _ MetricsService = (*Service)(nil)
