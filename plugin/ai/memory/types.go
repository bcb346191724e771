// Package memory defines the emotional memory records consumed by the context
// assembly pipeline, together with the provider boundary that supplies them.
package memory

import "time"

// ParticipantRole describes how a participant figures in a record.
type ParticipantRole string

const (
	RolePrimary   ParticipantRole = "primary"
	RoleSecondary ParticipantRole = "secondary"
	RoleMentioned ParticipantRole = "mentioned"
	RoleObserver  ParticipantRole = "observer"
)

// MoodDirection is the sign of a mood delta.
type MoodDirection string

const (
	DirectionPositive MoodDirection = "positive"
	DirectionNegative MoodDirection = "negative"
	DirectionNeutral  MoodDirection = "neutral"
)

// MoodDeltaType classifies a jump between temporally adjacent records.
type MoodDeltaType string

const (
	DeltaMoodRepair  MoodDeltaType = "mood_repair"
	DeltaCelebration MoodDeltaType = "celebration"
	DeltaDecline     MoodDeltaType = "decline"
	DeltaPlateau     MoodDeltaType = "plateau"
)

// PatternType is a detected behavioral pattern.
type PatternType string

const (
	PatternSupportSeeking PatternType = "support_seeking"
	PatternMoodRepair     PatternType = "mood_repair"
	PatternCelebration    PatternType = "celebration"
	PatternVulnerability  PatternType = "vulnerability"
	PatternGrowth         PatternType = "growth"
)

// SignificanceCategory is the bucket derived from the overall significance.
type SignificanceCategory string

const (
	SignificanceLow    SignificanceCategory = "low"
	SignificanceMedium SignificanceCategory = "medium"
	SignificanceHigh   SignificanceCategory = "high"
)

// DataStatus tells callers whether a component output was computed from data,
// from too little data, or from none at all.
type DataStatus string

const (
	StatusOK           DataStatus = "ok"
	StatusInsufficient DataStatus = "insufficient_data"
	StatusEmpty        DataStatus = "empty"
)

// Participant is a person taking part in, or mentioned by, a record.
type Participant struct {
	ID   string          `json:"id" yaml:"id"`
	Name string          `json:"name" yaml:"name"`
	Role ParticipantRole `json:"role" yaml:"role"`
}

// MoodScoring is the 0-10 mood summary of a record.
type MoodScoring struct {
	Score       float64  `json:"score" yaml:"score"`
	Descriptors []string `json:"descriptors" yaml:"descriptors"`
	Confidence  float64  `json:"confidence" yaml:"confidence"`
}

// MoodDelta is a detected mood jump relative to the previous record.
type MoodDelta struct {
	Magnitude           float64       `json:"magnitude" yaml:"magnitude"`
	Direction           MoodDirection `json:"direction" yaml:"direction"`
	Type                MoodDeltaType `json:"type" yaml:"type"`
	Confidence          float64       `json:"confidence" yaml:"confidence"`
	ContributingFactors []string      `json:"contributingFactors,omitempty" yaml:"contributingFactors,omitempty"`
}

// BehavioralPattern is a pattern detected in a record.
type BehavioralPattern struct {
	Type         PatternType `json:"type" yaml:"type"`
	Significance float64     `json:"significance" yaml:"significance"`
	Confidence   float64     `json:"confidence" yaml:"confidence"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// EmotionalAnalysis is the extractor's emotional reading of a record.
type EmotionalAnalysis struct {
	PrimaryEmotion string              `json:"primaryEmotion" yaml:"primaryEmotion"`
	Intensity      float64             `json:"intensity" yaml:"intensity"`
	Valence        float64             `json:"valence" yaml:"valence"`
	Arousal        float64             `json:"arousal" yaml:"arousal"`
	Confidence     float64             `json:"confidence" yaml:"confidence"`
	Themes         []string            `json:"themes" yaml:"themes"`
	MoodScoring    *MoodScoring        `json:"moodScoring,omitempty" yaml:"moodScoring,omitempty"`
	MoodDelta      *MoodDelta          `json:"moodDelta,omitempty" yaml:"moodDelta,omitempty"`
	Patterns       []BehavioralPattern `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// RelationshipDynamics describes the relationship observed in a record.
// Quality, trust and intimacy are 0-10; stability is 0-1.
type RelationshipDynamics struct {
	Quality             float64  `json:"quality" yaml:"quality"`
	Trust               float64  `json:"trust" yaml:"trust"`
	Intimacy            float64  `json:"intimacy" yaml:"intimacy"`
	InteractionPatterns []string `json:"interactionPatterns,omitempty" yaml:"interactionPatterns,omitempty"`
	Stability           float64  `json:"stability" yaml:"stability"`
}

// Significance is the 0-10 composite memorability of a record.
type Significance struct {
	Overall              float64              `json:"overall" yaml:"overall"`
	EmotionalSalience    float64              `json:"emotionalSalience" yaml:"emotionalSalience"`
	RelationshipImpact   float64              `json:"relationshipImpact" yaml:"relationshipImpact"`
	ContextualImportance float64              `json:"contextualImportance" yaml:"contextualImportance"`
	TemporalRelevance    float64              `json:"temporalRelevance" yaml:"temporalRelevance"`
	Category             SignificanceCategory `json:"category,omitempty" yaml:"category,omitempty"`
}

// QualityScores are the extractor's self-assessed quality sub-scores (0-1).
type QualityScores struct {
	Completeness float64 `json:"completeness" yaml:"completeness"`
	Coherence    float64 `json:"coherence" yaml:"coherence"`
	Accuracy     float64 `json:"accuracy" yaml:"accuracy"`
}

// ProcessingMetadata describes how a record was extracted.
type ProcessingMetadata struct {
	ExtractedAt time.Time     `json:"extractedAt" yaml:"extractedAt"`
	Confidence  float64       `json:"confidence" yaml:"confidence"`
	Quality     QualityScores `json:"quality" yaml:"quality"`
}

// Record is an emotional memory record. Records are immutable once produced;
// nothing in the pipeline writes to a Record it did not create.
type Record struct {
	ID           string                `json:"id" yaml:"id"`
	Timestamp    time.Time             `json:"timestamp" yaml:"timestamp"`
	Content      string                `json:"content" yaml:"content"`
	Participants []Participant         `json:"participants" yaml:"participants"`
	Analysis     EmotionalAnalysis     `json:"emotionalAnalysis" yaml:"emotionalAnalysis"`
	Relationship *RelationshipDynamics `json:"relationshipDynamics,omitempty" yaml:"relationshipDynamics,omitempty"`
	Significance Significance          `json:"significance" yaml:"significance"`
	Processing   ProcessingMetadata    `json:"processing" yaml:"processing"`
}
