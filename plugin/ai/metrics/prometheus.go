package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics exports assembly metrics as Prometheus instruments and
// keeps an in-memory aggregator to answer GetStats.
type PrometheusMetrics struct {
	Assemblies      *prometheus.CounterVec
	AssemblyLatency prometheus.Histogram
	ContextTokens   prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
	StageLatency    *prometheus.HistogramVec
	Optimizations   *prometheus.CounterVec

	aggregator *Aggregator
}

// NewPrometheusMetrics registers the instruments with reg. A nil reg uses
// the default registerer.
func NewPrometheusMetrics(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		Assemblies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assemblies_total",
			Help:      "Context assembly requests by goal and status.",
		}, []string{"goal", "status"}),
		AssemblyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assembly_latency_ms",
			Help:      "End to end context assembly latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		ContextTokens: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "context_tokens",
			Help:      "Estimated token count of assembled bundles.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000},
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Context cache lookups by result.",
		}, []string{"result"}),
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_ms",
			Help:      "Pipeline stage latency in milliseconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100},
		}, []string{"stage"}),
		Optimizations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizations_total",
			Help:      "Applied context size optimizations by name.",
		}, []string{"name"}),
		aggregator: NewAggregator(),
	}
}

func (m *PrometheusMetrics) RecordAssembly(_ context.Context, goal string, latency time.Duration, tokens int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.Assemblies.WithLabelValues(goal, status).Inc()
	m.AssemblyLatency.Observe(float64(latency.Milliseconds()))
	if success {
		m.ContextTokens.Observe(float64(tokens))
	}
	m.aggregator.RecordAssembly(goal, latency, tokens, success)
}

func (m *PrometheusMetrics) RecordStage(_ context.Context, stage string, latency time.Duration) {
	m.StageLatency.WithLabelValues(stage).Observe(float64(latency.Microseconds()) / 1000)
	m.aggregator.RecordStage(stage, latency)
}

func (m *PrometheusMetrics) RecordCacheLookup(_ context.Context, goal string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
	m.aggregator.RecordCacheLookup(goal, hit)
}

func (m *PrometheusMetrics) RecordOptimization(_ context.Context, name string) {
	m.Optimizations.WithLabelValues(name).Inc()
	m.aggregator.RecordOptimization(name)
}

func (m *PrometheusMetrics) GetStats(_ context.Context, _ TimeRange) (*PipelineMetrics, error) {
	return m.aggregator.GetCurrentStats(), nil
}

var _ MetricsService = (*PrometheusMetrics)(nil)
