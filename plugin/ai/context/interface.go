// Package context assembles mood, timeline and vocabulary context for a
// participant into one bundle for a conversational agent. It caches bundles
// per participant, goal and record set, and shrinks them to a token budget.
package context

import (
	"context"
	"time"

	"github.com/hrygo/emocontext/plugin/ai/memory"
	"github.com/hrygo/emocontext/plugin/ai/mood"
	"github.com/hrygo/emocontext/plugin/ai/timeline"
	"github.com/hrygo/emocontext/plugin/ai/vocabulary"
)

// ContextAssembler builds context bundles for a downstream agent.
type ContextAssembler interface {
	// AssembleContext builds (or fetches from cache) the bundle for a
	// participant from an unordered record collection.
	AssembleContext(ctx context.Context, records []memory.Record, participantID, goal string) (*Bundle, error)

	// OptimizeContextSize returns a copy of the bundle reduced to fit maxTokens.
	OptimizeContextSize(bundle *Bundle, maxTokens int) *Bundle

	// ValidateContextQuality scores a bundle in [0,1].
	ValidateContextQuality(bundle *Bundle) float64

	// GetStats returns assembly statistics.
	GetStats() *ContextStats
}

// Leaf component seams. The concrete tokenizer, builder and extractor satisfy
// them; tests substitute counting stubs.
type (
	MoodTokenizer interface {
		Tokenize(records []memory.Record) *mood.Context
	}
	TimelineBuilder interface {
		Build(records []memory.Record, participantID string) *timeline.Timeline
	}
	VocabularyExtractor interface {
		Extract(records []memory.Record, participantID string) *vocabulary.Vocabulary
	}
)

// AssembleRequest contains parameters for one assembly.
type AssembleRequest struct {
	ParticipantID    string
	ConversationGoal string
	DetailLevel      DetailLevel // brief, standard (default) or detailed
	MaxTokens        int         // overrides Config.MaxTokens when positive
}

// Response lengths recommended to the agent.
const (
	LengthBrief    = "brief"
	LengthModerate = "moderate"
	LengthDetailed = "detailed"
)

// Recommendations guide the agent's tone and approach.
type Recommendations struct {
	Tone           string   `json:"tone"`
	Approach       string   `json:"approach"`
	Avoid          []string `json:"avoid"`
	ResponseLength string   `json:"responseLength"`
}

// QualityMetrics are the inputs and result of ValidateContextQuality.
type QualityMetrics struct {
	Completeness   float64 `json:"completeness"`
	Relevance      float64 `json:"relevance"`
	MoodConfidence float64 `json:"moodConfidence"`
	HasKeyMoment   bool    `json:"hasKeyMoment"`
	Score          float64 `json:"score"`
}

// Optimization describes the size and quality of a bundle.
type Optimization struct {
	TokenCount           int            `json:"tokenCount"`
	RelevanceScore       float64        `json:"relevanceScore"`
	QualityMetrics       QualityMetrics `json:"qualityMetrics"`
	AppliedOptimizations []string       `json:"appliedOptimizations"`
}

// Bundle is the context handed to the downstream agent.
type Bundle struct {
	ParticipantID    string                 `json:"participantId"`
	ConversationGoal string                 `json:"conversationGoal,omitempty"`
	MoodContext      *mood.Context          `json:"moodContext"`
	TimelineSummary  *timeline.Timeline     `json:"timelineSummary"`
	Vocabulary       *vocabulary.Vocabulary `json:"vocabulary"`
	Optimization     Optimization           `json:"optimization"`
	Recommendations  Recommendations        `json:"recommendations"`
}

// ContextStats tracks context assembly metrics.
type ContextStats struct {
	TotalAssemblies  int64         `json:"total_assemblies"`
	CacheHits        int64         `json:"cache_hits"`
	Optimized        int64         `json:"optimized"`
	AverageTokens    float64       `json:"average_tokens"`
	AverageBuildTime time.Duration `json:"average_build_time"`
}
