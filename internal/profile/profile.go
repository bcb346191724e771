package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the process-level configuration for the context pipeline.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// DSN points to where emotional memory records are stored
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the binary
	Version string

	// Pipeline configuration
	MaxTokens              int           // EMOCTX_MAX_TOKENS (default: 2000)
	CacheTTL               time.Duration // EMOCTX_CACHE_TTL (default: 5m)
	CacheShards            int           // EMOCTX_CACHE_SHARDS (default: 16)
	RelevanceThreshold     *float64      // EMOCTX_RELEVANCE_THRESHOLD (default: 0.3)
	IncludeRecommendations *bool         // EMOCTX_INCLUDE_RECOMMENDATIONS (default: true)
	PrioritizeRecent       *bool         // EMOCTX_PRIORITIZE_RECENT (default: true)
	MoodWindow             int           // EMOCTX_MOOD_WINDOW (default: 5)
	MaxDescriptors         int           // EMOCTX_MAX_DESCRIPTORS (default: 5)
	TimelineMaxEvents      int           // EMOCTX_TIMELINE_MAX_EVENTS (default: 10)
	RelationshipScoped     bool          // EMOCTX_RELATIONSHIP_SCOPED (default: false)
	VocabularyScope        string        // EMOCTX_VOCABULARY_SCOPE (default: recent)
	MaxTermsPerCategory    int           // EMOCTX_MAX_TERMS (default: 10)
	IncludeEvolution       *bool         // EMOCTX_INCLUDE_EVOLUTION (default: true)
	MetricsNamespace       string        // EMOCTX_METRICS_NAMESPACE (default: emoctx)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring invalid integer env value", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func getFloatEnv(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("ignoring invalid float env value", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func getBoolEnv(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("ignoring invalid bool env value", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("ignoring invalid duration env value", "key", key, "value", raw)
		return defaultValue
	}
	return v
}

func ptr[T any](v T) *T {
	return &v
}

// FromEnv loads pipeline configuration from EMOCTX_* environment variables.
func (p *Profile) FromEnv() {
	p.MaxTokens = getIntEnv("EMOCTX_MAX_TOKENS", 2000)
	p.CacheTTL = getDurationEnv("EMOCTX_CACHE_TTL", 5*time.Minute)
	p.CacheShards = getIntEnv("EMOCTX_CACHE_SHARDS", 16)
	p.RelevanceThreshold = ptr(getFloatEnv("EMOCTX_RELEVANCE_THRESHOLD", 0.3))
	p.IncludeRecommendations = ptr(getBoolEnv("EMOCTX_INCLUDE_RECOMMENDATIONS", true))
	p.PrioritizeRecent = ptr(getBoolEnv("EMOCTX_PRIORITIZE_RECENT", true))
	p.MoodWindow = getIntEnv("EMOCTX_MOOD_WINDOW", 5)
	p.MaxDescriptors = getIntEnv("EMOCTX_MAX_DESCRIPTORS", 5)
	p.TimelineMaxEvents = getIntEnv("EMOCTX_TIMELINE_MAX_EVENTS", 10)
	p.RelationshipScoped = getBoolEnv("EMOCTX_RELATIONSHIP_SCOPED", false)
	p.VocabularyScope = getEnvOrDefault("EMOCTX_VOCABULARY_SCOPE", "recent")
	p.MaxTermsPerCategory = getIntEnv("EMOCTX_MAX_TERMS", 10)
	p.IncludeEvolution = ptr(getBoolEnv("EMOCTX_INCLUDE_EVOLUTION", true))
	p.MetricsNamespace = getEnvOrDefault("EMOCTX_METRICS_NAMESPACE", "emoctx")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q: only sqlite and postgres are supported", p.Driver)
	}

	if p.Driver == "postgres" {
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
		return nil
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		dbFile := fmt.Sprintf("emoctx_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
