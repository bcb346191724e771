// Package metrics records context assembly metrics and serves aggregated
// statistics over a time range.
package metrics

import (
	"context"
	"time"
)

// Pipeline stage names reported through RecordStage.
const (
	StageMood       = "mood"
	StageTimeline   = "timeline"
	StageVocabulary = "vocabulary"
	StageOptimize   = "optimize"
)

// MetricsService defines the assembly metrics service interface.
type MetricsService interface {
	// RecordAssembly records one finished assembly request.
	RecordAssembly(ctx context.Context, goal string, latency time.Duration, tokens int, success bool)

	// RecordStage records the latency of one pipeline stage.
	RecordStage(ctx context.Context, stage string, latency time.Duration)

	// RecordCacheLookup records a context cache lookup for a goal.
	RecordCacheLookup(ctx context.Context, goal string, hit bool)

	// RecordOptimization records an applied size optimization.
	RecordOptimization(ctx context.Context, name string)

	// GetStats retrieves statistics data.
	GetStats(ctx context.Context, timeRange TimeRange) (*PipelineMetrics, error)
}

// TimeRange represents a time range for querying metrics.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PipelineMetrics represents aggregated assembly metrics.
type PipelineMetrics struct {
	RequestCount  int64                 `json:"request_count"`
	SuccessCount  int64                 `json:"success_count"`
	CacheHits     int64                 `json:"cache_hits"`
	TokenSum      int64                 `json:"token_sum"`
	LatencyP50    time.Duration         `json:"latency_p50"`
	LatencyP95    time.Duration         `json:"latency_p95"`
	GoalStats     map[string]*GoalStat  `json:"goal_stats"`
	StageStats    map[string]*StageStat `json:"stage_stats"`
	Optimizations map[string]int64      `json:"optimizations"`
}

// GoalStat represents statistics for a single conversation goal.
type GoalStat struct {
	Count       int64         `json:"count"`
	SuccessRate float32       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
	AvgTokens   float64       `json:"avg_tokens"`
	CacheHits   int64         `json:"cache_hits"`
}

// StageStat represents statistics for a single pipeline stage.
type StageStat struct {
	Count      int64         `json:"count"`
	AvgLatency time.Duration `json:"avg_latency"`
}

// CacheHitRate returns cache hits over requests, zero when there were none.
func (m *PipelineMetrics) CacheHitRate() float64 {
	if m.RequestCount == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(m.RequestCount)
}

func newPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		GoalStats:     make(map[string]*GoalStat),
		StageStats:    make(map[string]*StageStat),
		Optimizations: make(map[string]int64),
	}
}

// goalTotals accumulates raw counts before they are turned into a GoalStat.
type goalTotals struct {
	requests   int64
	success    int64
	cacheHits  int64
	tokens     int64
	latencySum int64 // milliseconds
}

func (g *goalTotals) add(o goalTotals) {
	g.requests += o.requests
	g.success += o.success
	g.cacheHits += o.cacheHits
	g.tokens += o.tokens
	g.latencySum += o.latencySum
}

func (g goalTotals) stat() *GoalStat {
	stat := &GoalStat{Count: g.requests, CacheHits: g.cacheHits}
	if g.requests > 0 {
		stat.SuccessRate = float32(g.success) / float32(g.requests)
		stat.AvgLatency = time.Duration(g.latencySum/g.requests) * time.Millisecond
		stat.AvgTokens = float64(g.tokens) / float64(g.requests)
	}
	return stat
}

// fill writes per-goal totals and their sums into m.
func (m *PipelineMetrics) fill(totals map[string]*goalTotals) {
	for goal, t := range totals {
		m.RequestCount += t.requests
		m.SuccessCount += t.success
		m.CacheHits += t.cacheHits
		m.TokenSum += t.tokens
		m.GoalStats[goal] = t.stat()
	}
}
