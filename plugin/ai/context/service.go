package context

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/emocontext/internal/errors"
	"github.com/hrygo/emocontext/internal/observability"
	"github.com/hrygo/emocontext/plugin/ai/cache"
	"github.com/hrygo/emocontext/plugin/ai/memory"
	"github.com/hrygo/emocontext/plugin/ai/metrics"
	"github.com/hrygo/emocontext/plugin/ai/mood"
	"github.com/hrygo/emocontext/plugin/ai/timeline"
	"github.com/hrygo/emocontext/plugin/ai/vocabulary"
)

// Service implements ContextAssembler with caching support.
type Service struct {
	cfg Config

	mood       MoodTokenizer
	timeline   TimelineBuilder
	vocabulary VocabularyExtractor

	// Optional collaborators (injected)
	cache    cache.CacheService
	provider memory.RecordProvider
	metrics  metrics.MetricsService
	logger   *slog.Logger

	// Stats
	stats *serviceStats
}

type serviceStats struct {
	totalAssemblies int64
	totalTokens     int64
	cacheHits       int64
	optimized       int64
	totalBuildUs    int64
}

// Config configures the context assembler service.
type Config struct {
	MaxTokens              int           // Token ceiling for standard detail (default: 2000)
	RelevanceThreshold     float64       // Min processing confidence of a record (default: 0.3)
	IncludeRecommendations bool          // Derive recommendations from mood (default: true)
	PrioritizeRecent       bool          // Bias the working set toward recency (default: true)
	RecentWorkingSet       int           // Working set size when prioritizing recency (default: 50)
	CacheTTL               time.Duration // Cache TTL (default: 5 minutes)
	ProviderLimit          int           // Records fetched per Assemble call (default: 200)

	Mood       mood.Config
	Timeline   timeline.Config
	Vocabulary vocabulary.Config
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		MaxTokens:              DefaultMaxTokens,
		RelevanceThreshold:     0.3,
		IncludeRecommendations: true,
		PrioritizeRecent:       true,
		RecentWorkingSet:       50,
		CacheTTL:               5 * time.Minute,
		ProviderLimit:          200,
		Mood:                   mood.DefaultConfig(),
		Timeline:               timeline.DefaultConfig(),
		Vocabulary:             vocabulary.DefaultConfig(),
	}
}

// NewService creates a new context assembler service. Without WithCache it
// uses a NoopCache and recomputes every bundle.
func NewService(cfg Config) *Service {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.RelevanceThreshold < 0 {
		cfg.RelevanceThreshold = 0
	}
	if cfg.RecentWorkingSet <= 0 {
		cfg.RecentWorkingSet = def.RecentWorkingSet
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.ProviderLimit <= 0 {
		cfg.ProviderLimit = def.ProviderLimit
	}

	return &Service{
		cfg:        cfg,
		mood:       mood.NewTokenizer(cfg.Mood),
		timeline:   timeline.NewBuilder(cfg.Timeline),
		vocabulary: vocabulary.NewExtractor(cfg.Vocabulary),
		cache:      cache.NoopCache{},
		logger:     slog.Default(),
		stats:      &serviceStats{},
	}
}

// WithCache sets the cache provider.
func (s *Service) WithCache(c cache.CacheService) *Service {
	if c != nil {
		s.cache = c
	}
	return s
}

// WithProvider sets the record provider used by Assemble.
func (s *Service) WithProvider(p memory.RecordProvider) *Service {
	s.provider = p
	return s
}

// WithMetrics sets the metrics sink.
func (s *Service) WithMetrics(m metrics.MetricsService) *Service {
	s.metrics = m
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithLeaves replaces the leaf components. Nil arguments keep the current one.
func (s *Service) WithLeaves(m MoodTokenizer, t TimelineBuilder, v VocabularyExtractor) *Service {
	if m != nil {
		s.mood = m
	}
	if t != nil {
		s.timeline = t
	}
	if v != nil {
		s.vocabulary = v
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// AssembleContext builds the bundle for a participant at standard detail.
func (s *Service) AssembleContext(ctx context.Context, records []memory.Record, participantID, goal string) (*Bundle, error) {
	return s.AssembleRecords(ctx, records, &AssembleRequest{
		ParticipantID:    participantID,
		ConversationGoal: goal,
	})
}

// Assemble fetches the participant's records from the provider and builds
// the bundle. Provider failures degrade to an empty record set.
func (s *Service) Assemble(ctx context.Context, req *AssembleRequest) (*Bundle, error) {
	if req == nil {
		return nil, errors.InvalidArgument("assemble request is nil")
	}

	var records []memory.Record
	if s.provider == nil {
		s.logger.Warn("no record provider configured, assembling from empty history",
			observability.LogFieldParticipantID, req.ParticipantID)
	} else {
		list, err := s.provider.ListRecords(ctx, req.ParticipantID, s.cfg.ProviderLimit)
		switch {
		case err == nil:
			records = list
		case ctx.Err() != nil:
			return nil, errors.ContextCanceled(ctx.Err())
		default:
			s.logger.Warn("failed to list memory records, assembling from empty history",
				observability.LogFieldParticipantID, req.ParticipantID, "error", err)
		}
	}
	return s.AssembleRecords(ctx, records, req)
}

// AssembleRecords builds the bundle for req from records. The cache is
// consulted first; on a miss the three leaves run concurrently, the bundle
// is scored, reduced to the token budget and written back to the cache.
// The only error is caller cancellation.
func (s *Service) AssembleRecords(ctx context.Context, records []memory.Record, req *AssembleRequest) (*Bundle, error) {
	if req == nil {
		return nil, errors.InvalidArgument("assemble request is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ContextCanceled(err)
	}

	rc := observability.NewRequestContext(s.logger, req.ParticipantID, req.ConversationGoal)
	ctx = observability.WithRequestContext(ctx, rc)
	goal := req.ConversationGoal
	if goal == "" {
		goal = defaultGoal
	}

	atomic.AddInt64(&s.stats.totalAssemblies, 1)
	budget := BudgetFor(s.maxTokens(req), req.DetailLevel)
	key := CacheKey(req.ParticipantID, req.ConversationGoal, req.DetailLevel, req.MaxTokens, Fingerprint(records))

	if bundle, ok := s.fromCache(ctx, key); ok {
		atomic.AddInt64(&s.stats.cacheHits, 1)
		atomic.AddInt64(&s.stats.totalTokens, int64(bundle.Optimization.TokenCount))
		s.recordCacheLookup(ctx, goal, true)
		s.finish(ctx, rc, goal, bundle.Optimization.TokenCount, true)
		rc.Debug("context served from cache", slog.Bool(observability.LogFieldCacheHit, true))
		return bundle, nil
	}
	s.recordCacheLookup(ctx, goal, false)

	valid, skipped := memory.ValidRecords(records)
	if skipped > 0 {
		rc.Debug("skipped invalid records", slog.Int("skipped", skipped))
	}
	relevant := s.relevant(valid, req.ParticipantID)
	working := s.workingSet(relevant)

	var (
		moodCtx *mood.Context
		tl      *timeline.Timeline
		vocab   *vocabulary.Vocabulary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.stage(gctx, metrics.StageMood, func() { moodCtx = s.mood.Tokenize(working) })
	})
	g.Go(func() error {
		return s.stage(gctx, metrics.StageTimeline, func() { tl = s.timeline.Build(working, req.ParticipantID) })
	})
	g.Go(func() error {
		return s.stage(gctx, metrics.StageVocabulary, func() { vocab = s.vocabulary.Extract(working, req.ParticipantID) })
	})
	if err := g.Wait(); err != nil {
		s.finish(ctx, rc, goal, 0, false)
		return nil, errors.ContextCanceled(err)
	}

	bundle := &Bundle{
		ParticipantID:    req.ParticipantID,
		ConversationGoal: req.ConversationGoal,
		MoodContext:      moodCtx,
		TimelineSummary:  tl,
		Vocabulary:       vocab,
		Recommendations:  DefaultRecommendations(),
	}
	if s.cfg.IncludeRecommendations {
		bundle.Recommendations = Recommend(moodCtx, tl)
	}
	bundle.Optimization.RelevanceScore = relevanceScore(len(valid), relevant)
	bundle.Optimization.QualityMetrics = qualityMetrics(bundle)

	start := time.Now()
	bundle = s.OptimizeContextSize(bundle, budget)
	s.recordStage(ctx, metrics.StageOptimize, time.Since(start))
	if applied := bundle.Optimization.AppliedOptimizations; len(applied) > 0 {
		atomic.AddInt64(&s.stats.optimized, 1)
		rc.Info("context reduced to token budget",
			slog.Int("budget", budget),
			slog.Int(observability.LogFieldTokenCount, bundle.Optimization.TokenCount),
			slog.Any("applied", applied))
	}

	if err := ctx.Err(); err != nil {
		s.finish(ctx, rc, goal, 0, false)
		return nil, errors.ContextCanceled(err)
	}
	s.toCache(ctx, rc, key, bundle)

	atomic.AddInt64(&s.stats.totalTokens, int64(bundle.Optimization.TokenCount))
	s.finish(ctx, rc, goal, bundle.Optimization.TokenCount, true)
	rc.Debug("context assembled",
		slog.Int(observability.LogFieldRecordCount, len(records)),
		slog.Int(observability.LogFieldTokenCount, bundle.Optimization.TokenCount),
		slog.Bool(observability.LogFieldCacheHit, false))
	return bundle, nil
}

// OptimizeContextSize returns a copy of the bundle reduced to fit maxTokens
// and reports applied reductions to the metrics sink.
func (s *Service) OptimizeContextSize(bundle *Bundle, maxTokens int) *Bundle {
	out := OptimizeContextSize(bundle, maxTokens)
	if out != nil && s.metrics != nil {
		for _, name := range out.Optimization.AppliedOptimizations {
			s.metrics.RecordOptimization(context.Background(), name)
		}
	}
	return out
}

// ValidateContextQuality scores a bundle in [0,1].
func (s *Service) ValidateContextQuality(bundle *Bundle) float64 {
	return ValidateContextQuality(bundle)
}

// InvalidateParticipant drops every cached bundle of a participant.
func (s *Service) InvalidateParticipant(ctx context.Context, participantID string) error {
	if participantID == "" {
		return errors.InvalidArgument("participant id is required")
	}
	if err := s.cache.Invalidate(ctx, ParticipantPattern(participantID)); err != nil {
		return errors.CacheUnavailable(err).WithContext("participant_id", participantID)
	}
	return nil
}

// GetStats returns context assembly statistics.
func (s *Service) GetStats() *ContextStats {
	total := atomic.LoadInt64(&s.stats.totalAssemblies)
	if total == 0 {
		return &ContextStats{}
	}

	return &ContextStats{
		TotalAssemblies:  total,
		CacheHits:        atomic.LoadInt64(&s.stats.cacheHits),
		Optimized:        atomic.LoadInt64(&s.stats.optimized),
		AverageTokens:    float64(atomic.LoadInt64(&s.stats.totalTokens)) / float64(total),
		AverageBuildTime: time.Duration(atomic.LoadInt64(&s.stats.totalBuildUs)/total) * time.Microsecond,
	}
}

func (s *Service) maxTokens(req *AssembleRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return s.cfg.MaxTokens
}

// relevant keeps records where the participant is present, matching the
// timeline scope, with a processing confidence at or above the threshold.
// Records without a reported confidence pass.
func (s *Service) relevant(records []memory.Record, participantID string) []memory.Record {
	out := make([]memory.Record, 0, len(records))
	for i := range records {
		r := &records[i]
		if !memory.IsRelevant(r, participantID, s.cfg.Timeline.RelationshipScoped) {
			continue
		}
		if c := r.ProcessingConfidence(); c > 0 && c < s.cfg.RelevanceThreshold {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// workingSet keeps the most recent records when recency is prioritized.
func (s *Service) workingSet(relevant []memory.Record) []memory.Record {
	if !s.cfg.PrioritizeRecent || len(relevant) <= s.cfg.RecentWorkingSet {
		return relevant
	}
	return memory.SortByRecency(relevant)[:s.cfg.RecentWorkingSet]
}

// stage runs fn unless ctx is already done and reports its latency.
func (s *Service) stage(ctx context.Context, name string, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	fn()
	s.recordStage(ctx, name, time.Since(start))
	return nil
}

func (s *Service) fromCache(ctx context.Context, key string) (*Bundle, bool) {
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		s.logger.Warn("discarding undecodable cached context", "key", key, "error", err)
		return nil, false
	}
	return &bundle, true
}

func (s *Service) toCache(ctx context.Context, rc *observability.RequestContext, key string, bundle *Bundle) {
	data, err := json.Marshal(bundle)
	if err != nil {
		rc.Warn("failed to encode context for cache", slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		rc.Warn("failed to cache context, continuing without cache", slog.String("error", err.Error()))
	}
}

func (s *Service) finish(ctx context.Context, rc *observability.RequestContext, goal string, tokens int, success bool) {
	elapsed := rc.Duration()
	atomic.AddInt64(&s.stats.totalBuildUs, elapsed.Microseconds())
	if s.metrics != nil {
		s.metrics.RecordAssembly(ctx, goal, elapsed, tokens, success)
	}
}

func (s *Service) recordStage(ctx context.Context, name string, latency time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordStage(ctx, name, latency)
	}
}

func (s *Service) recordCacheLookup(ctx context.Context, goal string, hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(ctx, goal, hit)
	}
}

// Ensure Service implements ContextAssembler
var _ ContextAssembler = (*Service)(nil)
