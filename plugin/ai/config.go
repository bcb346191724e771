package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/hrygo/emocontext/internal/profile"
	"github.com/hrygo/emocontext/plugin/ai/cache"
	aicontext "github.com/hrygo/emocontext/plugin/ai/context"
	"github.com/hrygo/emocontext/plugin/ai/metrics"
	"github.com/hrygo/emocontext/plugin/ai/vocabulary"
)

// DefaultMemoryBuffer is the number of records buffered per participant
// by the memory service.
const DefaultMemoryBuffer = 100

// Config represents the context pipeline configuration.
type Config struct {
	Context aicontext.Config
	Cache   cache.ServiceConfig
	Metrics MetricsConfig

	MemoryBuffer int // Records buffered per participant (default: 100)
}

// MetricsConfig represents pipeline metrics configuration.
type MetricsConfig struct {
	Namespace string // Prometheus namespace (default: emoctx)
	Persister metrics.PersisterConfig
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Context: aicontext.DefaultConfig(),
		Cache:   cache.DefaultServiceConfig(),
		Metrics: MetricsConfig{
			Namespace: "emoctx",
			Persister: metrics.DefaultPersisterConfig(),
		},
		MemoryBuffer: DefaultMemoryBuffer,
	}
}

// NewConfigFromProfile creates pipeline config from profile.
// Zero or nil profile values keep the defaults.
func NewConfigFromProfile(p *profile.Profile) (*Config, error) {
	cfg := DefaultConfig()
	if p == nil {
		return cfg, nil
	}

	ctxCfg := &cfg.Context
	if p.MaxTokens != 0 {
		ctxCfg.MaxTokens = p.MaxTokens
	}
	if p.CacheTTL != 0 {
		ctxCfg.CacheTTL = p.CacheTTL
		cfg.Cache.DefaultTTL = p.CacheTTL
	}
	if p.CacheShards != 0 {
		cfg.Cache.Shards = p.CacheShards
	}
	if p.RelevanceThreshold != nil {
		ctxCfg.RelevanceThreshold = *p.RelevanceThreshold
	}
	if p.IncludeRecommendations != nil {
		ctxCfg.IncludeRecommendations = *p.IncludeRecommendations
	}
	if p.PrioritizeRecent != nil {
		ctxCfg.PrioritizeRecent = *p.PrioritizeRecent
	}

	// Leaf configuration
	if p.MoodWindow != 0 {
		ctxCfg.Mood.WindowSize = p.MoodWindow
	}
	if p.MaxDescriptors != 0 {
		ctxCfg.Mood.MaxDescriptors = p.MaxDescriptors
	}
	if p.TimelineMaxEvents != 0 {
		ctxCfg.Timeline.MaxRecentEvents = p.TimelineMaxEvents
	}
	ctxCfg.Timeline.RelationshipScoped = p.RelationshipScoped

	scope, err := vocabulary.ParseScope(p.VocabularyScope)
	if err != nil {
		return nil, err
	}
	ctxCfg.Vocabulary.SourceScope = scope
	if p.MaxTermsPerCategory != 0 {
		ctxCfg.Vocabulary.MaxTermsPerCategory = p.MaxTermsPerCategory
	}
	if p.IncludeEvolution != nil {
		ctxCfg.Vocabulary.IncludeEvolution = *p.IncludeEvolution
	}

	if p.MetricsNamespace != "" {
		cfg.Metrics.Namespace = p.MetricsNamespace
	}

	return cfg, cfg.Validate()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Context.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.Context.MaxTokens)
	}
	if c.Context.RelevanceThreshold < 0 || c.Context.RelevanceThreshold > 1 {
		return fmt.Errorf("relevance threshold must be within [0, 1], got %v", c.Context.RelevanceThreshold)
	}
	if c.Context.CacheTTL < time.Second {
		return errors.New("cache TTL must be at least one second")
	}
	if c.Cache.Shards <= 0 {
		return fmt.Errorf("cache shards must be positive, got %d", c.Cache.Shards)
	}
	if c.Context.Mood.WindowSize < 0 || c.Context.Mood.MaxDescriptors < 0 {
		return errors.New("mood window and descriptors must not be negative")
	}
	if c.Context.Timeline.MaxRecentEvents < 0 {
		return errors.New("timeline max events must not be negative")
	}
	if _, err := vocabulary.ParseScope(string(c.Context.Vocabulary.SourceScope)); err != nil {
		return err
	}
	if c.Context.Vocabulary.MaxTermsPerCategory < 0 {
		return errors.New("vocabulary terms per category must not be negative")
	}
	if c.Metrics.Namespace == "" {
		return errors.New("metrics namespace is required")
	}
	return nil
}
