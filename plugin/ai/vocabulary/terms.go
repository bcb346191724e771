package vocabulary

import (
	"github.com/hrygo/emocontext/plugin/ai/memory"
)

var patternThemes = map[memory.PatternType]string{
	memory.PatternSupportSeeking: "seeking support",
	memory.PatternMoodRepair:     "emotional recovery",
	memory.PatternCelebration:    "celebration",
	memory.PatternVulnerability:  "openness",
	memory.PatternGrowth:         "personal growth",
}

var emotionDescriptors = map[string]string{
	"joy":         "joyful",
	"happiness":   "happy",
	"sadness":     "sad",
	"anger":       "frustrated",
	"fear":        "anxious",
	"anxiety":     "anxious",
	"surprise":    "surprised",
	"love":        "affectionate",
	"gratitude":   "grateful",
	"trust":       "trusting",
	"disgust":     "uncomfortable",
	"pride":       "proud",
	"hope":        "hopeful",
	"loneliness":  "lonely",
	"excitement":  "excited",
	"contentment": "content",
}

var roleTerms = map[memory.ParticipantRole]string{
	memory.RolePrimary:   "close",
	memory.RoleSecondary: "connected",
	memory.RoleMentioned: "mentioned",
}

// themes counts record themes once each and pattern synonyms by the
// pattern's significance.
func (e *Extractor) themes(records []memory.Record) []string {
	counter := memory.NewTermCounter()
	for i := range records {
		for _, theme := range records[i].Themes() {
			counter.Add(theme, 1)
		}
		for _, p := range records[i].Analysis.Patterns {
			if synonym, ok := patternThemes[p.Type]; ok {
				counter.Add(synonym, clamp(p.Significance, 0, 10))
			}
		}
	}
	return counter.Top(e.cfg.MaxTermsPerCategory)
}

// descriptors weights each descriptor by confidence x significance/10 and
// adds a descriptor derived from the primary emotion when one is known.
func (e *Extractor) descriptors(records []memory.Record) []string {
	counter := memory.NewTermCounter()
	for i := range records {
		r := &records[i]
		sig := r.SignificanceScore() / 10
		weight := r.MoodConfidence() * sig
		for _, d := range r.MoodDescriptors() {
			counter.Add(d, weight)
		}
		if derived, ok := emotionDescriptors[memory.NormalizeTerm(r.Analysis.PrimaryEmotion)]; ok {
			counter.Add(derived, clamp(r.Analysis.Confidence, 0, 1)*sig)
		}
	}
	top := counter.Top(e.cfg.MaxTermsPerCategory)
	if len(top) == 0 {
		return []string{"neutral"}
	}
	return top
}

// relationshipTerms combines named interaction patterns, a quality bucket,
// a flat "supportive" for support patterns and the roles of co-participants.
func (e *Extractor) relationshipTerms(records []memory.Record, participantID string) []string {
	counter := memory.NewTermCounter()
	for i := range records {
		r := &records[i]
		if rel := r.Relationship; rel != nil {
			for _, p := range rel.InteractionPatterns {
				counter.Add(p, 1)
			}
			for _, term := range qualityTerms(rel.Quality) {
				counter.Add(term, 1)
			}
		}
		if r.HasSupportPattern() {
			counter.Add("supportive", 1)
		}
		for _, p := range r.Participants {
			if p.ID == participantID {
				continue
			}
			if term, ok := roleTerms[p.Role]; ok {
				counter.Add(term, 1)
			}
		}
	}
	return counter.Top(e.cfg.MaxTermsPerCategory)
}

func qualityTerms(quality float64) []string {
	switch {
	case quality >= 8:
		return []string{"strong", "positive"}
	case quality >= 6:
		return []string{"good", "stable"}
	case quality >= 4:
		return []string{"neutral"}
	default:
		return []string{"challenging", "strained"}
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
