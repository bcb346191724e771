package metrics

import (
	"context"
	"sync"
	"time"
)

// MockMetricsService is a mock implementation of MetricsService for testing.
type MockMetricsService struct {
	mu            sync.RWMutex
	assemblies    []AssemblyRecord
	stages        []StageRecord
	cacheLookups  []bool
	optimizations []string
}

// AssemblyRecord is one RecordAssembly call seen by the mock.
type AssemblyRecord struct {
	Goal      string
	Latency   time.Duration
	Tokens    int
	Success   bool
	Timestamp time.Time
}

// StageRecord is one RecordStage call seen by the mock.
type StageRecord struct {
	Stage   string
	Latency time.Duration
}

// NewMockMetricsService creates a new MockMetricsService.
func NewMockMetricsService() *MockMetricsService {
	return &MockMetricsService{}
}

func (m *MockMetricsService) RecordAssembly(_ context.Context, goal string, latency time.Duration, tokens int, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assemblies = append(m.assemblies, AssemblyRecord{
		Goal:      goal,
		Latency:   latency,
		Tokens:    tokens,
		Success:   success,
		Timestamp: time.Now(),
	})
}

func (m *MockMetricsService) RecordStage(_ context.Context, stage string, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, StageRecord{Stage: stage, Latency: latency})
}

func (m *MockMetricsService) RecordCacheLookup(_ context.Context, _ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheLookups = append(m.cacheLookups, hit)
}

func (m *MockMetricsService) RecordOptimization(_ context.Context, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optimizations = append(m.optimizations, name)
}

// GetStats aggregates the recorded assemblies inside timeRange.
func (m *MockMetricsService) GetStats(_ context.Context, timeRange TimeRange) (*PipelineMetrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := newPipelineMetrics()
	totals := make(map[string]*goalTotals)
	latencies := make([]int64, 0, len(m.assemblies))
	for _, r := range m.assemblies {
		if (!timeRange.Start.IsZero() && r.Timestamp.Before(timeRange.Start)) ||
			(!timeRange.End.IsZero() && r.Timestamp.After(timeRange.End)) {
			continue
		}
		t, ok := totals[r.Goal]
		if !ok {
			t = &goalTotals{}
			totals[r.Goal] = t
		}
		t.requests++
		if r.Success {
			t.success++
		}
		t.tokens += int64(r.Tokens)
		t.latencySum += r.Latency.Milliseconds()
		latencies = append(latencies, r.Latency.Milliseconds())
	}
	stats.fill(totals)
	for _, hit := range m.cacheLookups {
		if hit {
			stats.CacheHits++
		}
	}
	for _, s := range m.stages {
		stat, ok := stats.StageStats[s.Stage]
		if !ok {
			stat = &StageStat{}
			stats.StageStats[s.Stage] = stat
		}
		stat.Count++
	}
	for _, name := range m.optimizations {
		stats.Optimizations[name]++
	}
	stats.LatencyP50 = time.Duration(percentile(latencies, 50)) * time.Millisecond
	stats.LatencyP95 = time.Duration(percentile(latencies, 95)) * time.Millisecond
	return stats, nil
}

// Assemblies returns a copy of the recorded assemblies.
func (m *MockMetricsService) Assemblies() []AssemblyRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AssemblyRecord(nil), m.assemblies...)
}

// Stages returns the recorded stage names in call order.
func (m *MockMetricsService) Stages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.stages))
	for i, s := range m.stages {
		names[i] = s.Stage
	}
	return names
}

// CacheLookups returns the recorded hit flags in call order.
func (m *MockMetricsService) CacheLookups() []bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]bool(nil), m.cacheLookups...)
}

// Optimizations returns the recorded optimization names in call order.
func (m *MockMetricsService) Optimizations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.optimizations...)
}

// Clear removes all recorded metrics (for testing).
func (m *MockMetricsService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assemblies = nil
	m.stages = nil
	m.cacheLookups = nil
	m.optimizations = nil
}

// Ensure MockMetricsService implements MetricsService
var _ MetricsService = (*MockMetricsService)(nil)
