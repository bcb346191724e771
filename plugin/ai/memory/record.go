package memory

import (
	"strings"

	pipelineerrors "github.com/hrygo/emocontext/internal/errors"
)

// NeutralMoodScore is used when a record carries no mood scoring.
const NeutralMoodScore = 5.0

// Validate reports whether the record carries the identity fields the
// pipeline relies on. Invalid records are skipped, never repaired.
func (r *Record) Validate() error {
	if r.ID == "" {
		return pipelineerrors.InvalidRecord("record id is empty")
	}
	if r.Timestamp.IsZero() {
		return pipelineerrors.InvalidRecord("record timestamp is zero").WithContext("record_id", r.ID)
	}
	for _, p := range r.Participants {
		if strings.Contains(p.ID, ",") {
			return pipelineerrors.InvalidRecord("participant id contains a comma").
				WithContext("record_id", r.ID).
				WithContext("participant_id", p.ID)
		}
	}
	return nil
}

// MoodScore returns the record's mood score clamped to [0,10], or the
// neutral midpoint when the record has no mood scoring.
func (r *Record) MoodScore() float64 {
	if r.Analysis.MoodScoring == nil {
		return NeutralMoodScore
	}
	return clamp(r.Analysis.MoodScoring.Score, 0, 10)
}

// MoodConfidence returns the mood scoring confidence clamped to [0,1].
func (r *Record) MoodConfidence() float64 {
	if r.Analysis.MoodScoring == nil {
		return 0
	}
	return clamp(r.Analysis.MoodScoring.Confidence, 0, 1)
}

// MoodDescriptors returns the mood descriptors, never nil.
func (r *Record) MoodDescriptors() []string {
	if r.Analysis.MoodScoring == nil || r.Analysis.MoodScoring.Descriptors == nil {
		return []string{}
	}
	return r.Analysis.MoodScoring.Descriptors
}

// Themes returns the emotional themes, never nil.
func (r *Record) Themes() []string {
	if r.Analysis.Themes == nil {
		return []string{}
	}
	return r.Analysis.Themes
}

// SignificanceScore returns the overall significance clamped to [0,10].
func (r *Record) SignificanceScore() float64 {
	return clamp(r.Significance.Overall, 0, 10)
}

// SignificanceCategory returns the stored category when it is one of the
// known values, otherwise the category derived from the overall score.
func (r *Record) SignificanceCategory() SignificanceCategory {
	switch r.Significance.Category {
	case SignificanceLow, SignificanceMedium, SignificanceHigh:
		return r.Significance.Category
	}
	return CategoryFor(r.SignificanceScore())
}

// ProcessingConfidence returns the extraction confidence clamped to [0,1].
// A zero value means the extractor did not report one.
func (r *Record) ProcessingConfidence() float64 {
	return clamp(r.Processing.Confidence, 0, 1)
}

// QualityScore averages the non-zero processing quality sub-scores, falling
// back to the processing confidence, then to 1 when nothing was reported.
func (r *Record) QualityScore() float64 {
	q := r.Processing.Quality
	sum, n := 0.0, 0
	for _, v := range []float64{q.Completeness, q.Coherence, q.Accuracy} {
		if v > 0 {
			sum += clamp(v, 0, 1)
			n++
		}
	}
	if n > 0 {
		return sum / float64(n)
	}
	if c := r.ProcessingConfidence(); c > 0 {
		return c
	}
	return 1
}

// HasParticipant reports whether the participant appears in the record.
func (r *Record) HasParticipant(participantID string) bool {
	for _, p := range r.Participants {
		if p.ID == participantID {
			return true
		}
	}
	return false
}

// HasPattern reports whether any of the given pattern types was detected.
func (r *Record) HasPattern(types ...PatternType) bool {
	for _, p := range r.Analysis.Patterns {
		for _, t := range types {
			if p.Type == t {
				return true
			}
		}
	}
	return false
}

// HasSupportPattern reports a support-seeking or mood-repair pattern.
func (r *Record) HasSupportPattern() bool {
	return r.HasPattern(PatternSupportSeeking, PatternMoodRepair)
}

// Clamped returns a copy with quality, trust and intimacy in [0,10] and
// stability in [0,1].
func (d *RelationshipDynamics) Clamped() RelationshipDynamics {
	out := *d
	out.Quality = clamp(d.Quality, 0, 10)
	out.Trust = clamp(d.Trust, 0, 10)
	out.Intimacy = clamp(d.Intimacy, 0, 10)
	out.Stability = clamp(d.Stability, 0, 1)
	return out
}

// CategoryFor derives the significance category from an overall score.
func CategoryFor(overall float64) SignificanceCategory {
	switch {
	case overall >= 7:
		return SignificanceHigh
	case overall >= 4:
		return SignificanceMedium
	default:
		return SignificanceLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
