package metrics

import (
	"context"
	"time"
)

// MultiMetrics fans every record out to several services. GetStats is served
// by the first service.
type MultiMetrics struct {
	services []MetricsService
}

// NewMultiMetrics combines services. Nil services are skipped.
func NewMultiMetrics(services ...MetricsService) *MultiMetrics {
	m := &MultiMetrics{}
	for _, s := range services {
		if s != nil {
			m.services = append(m.services, s)
		}
	}
	return m
}

func (m *MultiMetrics) RecordAssembly(ctx context.Context, goal string, latency time.Duration, tokens int, success bool) {
	for _, s := range m.services {
		s.RecordAssembly(ctx, goal, latency, tokens, success)
	}
}

func (m *MultiMetrics) RecordStage(ctx context.Context, stage string, latency time.Duration) {
	for _, s := range m.services {
		s.RecordStage(ctx, stage, latency)
	}
}

func (m *MultiMetrics) RecordCacheLookup(ctx context.Context, goal string, hit bool) {
	for _, s := range m.services {
		s.RecordCacheLookup(ctx, goal, hit)
	}
}

func (m *MultiMetrics) RecordOptimization(ctx context.Context, name string) {
	for _, s := range m.services {
		s.RecordOptimization(ctx, name)
	}
}

func (m *MultiMetrics) GetStats(ctx context.Context, timeRange TimeRange) (*PipelineMetrics, error) {
	if len(m.services) == 0 {
		return newPipelineMetrics(), nil
	}
	return m.services[0].GetStats(ctx, timeRange)
}

var _ MetricsService = (*MultiMetrics)(nil)
