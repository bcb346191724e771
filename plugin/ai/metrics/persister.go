package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/emocontext/store"
)

// Persister handles periodic persistence of aggregated metrics to the database.
type Persister struct {
	store      *store.Store
	aggregator *Aggregator

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	flushInterval   time.Duration
	retentionPeriod time.Duration
	cleanupInterval time.Duration
}

// PersisterConfig configures the metrics persister.
type PersisterConfig struct {
	FlushInterval   time.Duration // How often to flush metrics to DB (default: 1 hour)
	RetentionPeriod time.Duration // How long to keep metrics (default: 30 days)
	CleanupInterval time.Duration // How often to run cleanup (default: 24 hours)
}

// DefaultPersisterConfig returns default persister configuration.
func DefaultPersisterConfig() PersisterConfig {
	return PersisterConfig{
		FlushInterval:   time.Hour,
		RetentionPeriod: 30 * 24 * time.Hour,
		CleanupInterval: 24 * time.Hour,
	}
}

// NewPersister creates a new metrics persister.
func NewPersister(s *store.Store, agg *Aggregator, cfg PersisterConfig) *Persister {
	def := DefaultPersisterConfig()
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.RetentionPeriod <= 0 {
		cfg.RetentionPeriod = def.RetentionPeriod
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Persister{
		store:           s,
		aggregator:      agg,
		ctx:             ctx,
		cancel:          cancel,
		flushInterval:   cfg.FlushInterval,
		retentionPeriod: cfg.RetentionPeriod,
		cleanupInterval: cfg.CleanupInterval,
	}
}

// Start begins the background persistence and cleanup tasks.
func (p *Persister) Start() {
	p.wg.Add(2)
	go p.flushLoop()
	go p.cleanupLoop()
}

// Close stops the persister, waits for goroutines to finish and persists
// every bucket still held in memory, including the current hour.
func (p *Persister) Close() {
	p.closeOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		nextHour := truncateToHour(p.aggregator.now()).Add(time.Hour)
		if err := p.flush(context.Background(), nextHour); err != nil {
			slog.Error("final metrics flush failed", "error", err)
		}
	})
}

// Flush immediately persists all completed hour buckets to the database.
func (p *Persister) Flush(ctx context.Context) error {
	return p.flush(ctx, truncateToHour(p.aggregator.now()))
}

func (p *Persister) flush(ctx context.Context, beforeHour time.Time) error {
	var failed int
	for _, snapshot := range p.aggregator.FlushAssemblyMetrics(beforeHour) {
		_, err := p.store.UpsertAssemblyMetrics(ctx, &store.UpsertAssemblyMetrics{
			HourBucket:   snapshot.HourBucket,
			Goal:         snapshot.Goal,
			RequestCount: snapshot.RequestCount,
			SuccessCount: snapshot.SuccessCount,
			CacheHits:    snapshot.CacheHits,
			TokenSum:     snapshot.TokenSum,
			LatencySumMs: snapshot.LatencySumMs,
			LatencyP50Ms: snapshot.LatencyP50Ms,
			LatencyP95Ms: snapshot.LatencyP95Ms,
		})
		if err != nil {
			failed++
			slog.Error("failed to persist assembly metrics",
				"goal", snapshot.Goal,
				"hour", snapshot.HourBucket,
				"error", err,
			)
		}
	}
	if failed > 0 {
		return errors.Errorf("failed to persist %d metrics buckets", failed)
	}
	return nil
}

func (p *Persister) flushLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if err := p.Flush(p.ctx); err != nil {
				slog.Error("periodic metrics flush failed", "error", err)
			}
		}
	}
}

func (p *Persister) cleanupLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.cleanup(p.ctx)
		}
	}
}

func (p *Persister) cleanup(ctx context.Context) {
	cutoff := p.aggregator.now().Add(-p.retentionPeriod)

	if err := p.store.DeleteAssemblyMetrics(ctx, &store.DeleteAssemblyMetrics{
		BeforeTime: &cutoff,
	}); err != nil {
		slog.Error("failed to cleanup old assembly metrics", "error", err)
		return
	}

	slog.Debug("metrics cleanup completed", "cutoff", cutoff)
}
