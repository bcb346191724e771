package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hrygo/emocontext/internal/profile"
)

// readConfigFile loads an optional config file (yaml, json or toml) into v.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// applyConfig copies pipeline knobs from the config file onto p. Keys use the
// EMOCTX_* names without the prefix (max_tokens, cache_ttl, ...). A set
// environment variable wins over the file.
func applyConfig(v *viper.Viper, p *profile.Profile) {
	set := func(key string) bool {
		if !v.InConfig(key) {
			return false
		}
		_, fromEnv := os.LookupEnv("EMOCTX_" + strings.ToUpper(key))
		return !fromEnv
	}

	if set("max_tokens") {
		p.MaxTokens = v.GetInt("max_tokens")
	}
	if set("cache_ttl") {
		p.CacheTTL = v.GetDuration("cache_ttl")
	}
	if set("cache_shards") {
		p.CacheShards = v.GetInt("cache_shards")
	}
	if set("relevance_threshold") {
		p.RelevanceThreshold = ptr(v.GetFloat64("relevance_threshold"))
	}
	if set("include_recommendations") {
		p.IncludeRecommendations = ptr(v.GetBool("include_recommendations"))
	}
	if set("prioritize_recent") {
		p.PrioritizeRecent = ptr(v.GetBool("prioritize_recent"))
	}
	if set("mood_window") {
		p.MoodWindow = v.GetInt("mood_window")
	}
	if set("max_descriptors") {
		p.MaxDescriptors = v.GetInt("max_descriptors")
	}
	if set("timeline_max_events") {
		p.TimelineMaxEvents = v.GetInt("timeline_max_events")
	}
	if set("relationship_scoped") {
		p.RelationshipScoped = v.GetBool("relationship_scoped")
	}
	if set("vocabulary_scope") {
		p.VocabularyScope = v.GetString("vocabulary_scope")
	}
	if set("max_terms") {
		p.MaxTermsPerCategory = v.GetInt("max_terms")
	}
	if set("include_evolution") {
		p.IncludeEvolution = ptr(v.GetBool("include_evolution"))
	}
	if set("metrics_namespace") {
		p.MetricsNamespace = v.GetString("metrics_namespace")
	}
}

func ptr[T any](v T) *T {
	return &v
}
