package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hrygo/emocontext/plugin/ai"
	"github.com/hrygo/emocontext/plugin/ai/cache"
	aicontext "github.com/hrygo/emocontext/plugin/ai/context"
	"github.com/hrygo/emocontext/plugin/ai/memory"
	"github.com/hrygo/emocontext/plugin/ai/metrics"
	"github.com/hrygo/emocontext/store"
)

// pipeline wires the assembler to its store-backed collaborators.
type pipeline struct {
	store     *store.Store
	memory    *memory.Service
	cache     *cache.Service
	metrics   *metrics.Service
	registry  *prometheus.Registry
	assembler *aicontext.Service
}

func newPipeline(s *store.Store, cfg *ai.Config) *pipeline {
	p := &pipeline{
		store:    s,
		memory:   memory.NewService(s, cfg.MemoryBuffer),
		cache:    cache.NewService(cfg.Cache),
		metrics:  metrics.NewService(s, cfg.Metrics.Persister),
		registry: prometheus.NewRegistry(),
	}
	prom := metrics.NewPrometheusMetrics(cfg.Metrics.Namespace, p.registry)

	p.assembler = aicontext.NewService(cfg.Context).
		WithCache(p.cache).
		WithProvider(p.memory).
		WithMetrics(metrics.NewMultiMetrics(p.metrics, prom)).
		WithLogger(slog.Default())
	return p
}

// writeMetrics writes the Prometheus registry in text format.
func (p *pipeline) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, p.registry)
}

// Close flushes metrics and stops background loops.
func (p *pipeline) Close() {
	p.metrics.Close()
	p.cache.Close()
	p.memory.Close()
}
