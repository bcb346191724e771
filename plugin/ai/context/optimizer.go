package context

import (
	"encoding/json"
	"log/slog"

	"github.com/hrygo/emocontext/plugin/ai/mood"
	"github.com/hrygo/emocontext/plugin/ai/timeline"
)

// Names recorded in Optimization.AppliedOptimizations.
const (
	OptSizeReduction    = "size_reduction"
	OptVocabularyCapped = "vocabulary_capped"
	OptKeyMomentsOnly   = "timeline_key_moments_only"
	OptNarrativeShort   = "narrative_shortened"
	OptBudgetExceeded   = "budget_exceeded"
)

// vocabularyCaps are the shrinking per-category limits tried in order.
var vocabularyCaps = []int{5, 3, 1}

// OptimizeContextSize returns a copy of b that fits maxTokens where possible.
// Reductions run in a fixed order and stop as soon as the estimate fits:
// vocabulary caps, then dropping ordinary timeline events, then a one-clause
// mood narrative. The input bundle is never modified. A non-positive
// maxTokens means no ceiling.
func OptimizeContextSize(b *Bundle, maxTokens int) *Bundle {
	if b == nil {
		return nil
	}
	out := cloneBundle(b)
	tokens := EstimateBundleTokens(out)
	out.Optimization.TokenCount = tokens
	if maxTokens <= 0 || tokens <= maxTokens {
		out.Optimization.AppliedOptimizations = []string{}
		return out
	}

	applied := []string{}
	fits := func() bool {
		tokens = EstimateBundleTokens(out)
		return tokens <= maxTokens
	}

	done := false
	for _, limit := range vocabularyCaps {
		if !capVocabulary(out, limit) {
			continue
		}
		applied = appendUnique(applied, OptVocabularyCapped)
		if fits() {
			done = true
			break
		}
	}

	if !done && out.TimelineSummary != nil && len(out.TimelineSummary.RecentEvents) > 0 {
		out.TimelineSummary.RecentEvents = []timeline.Event{}
		applied = append(applied, OptKeyMomentsOnly)
		done = fits()
	}

	if !done && out.MoodContext != nil {
		short := mood.ShortNarrative(out.MoodContext.MoodTrend)
		if len(short) < len(out.MoodContext.TrajectoryOverview) {
			out.MoodContext.TrajectoryOverview = short
			applied = append(applied, OptNarrativeShort)
			done = fits()
		}
	}

	if len(applied) > 0 {
		applied = append([]string{OptSizeReduction}, applied...)
	}
	if !done {
		applied = append(applied, OptBudgetExceeded)
	}
	out.Optimization.TokenCount = tokens
	out.Optimization.AppliedOptimizations = applied
	return out
}

// capVocabulary trims every vocabulary list to limit and reports whether
// anything was removed.
func capVocabulary(b *Bundle, limit int) bool {
	v := b.Vocabulary
	if v == nil {
		return false
	}
	changed := false
	capList := func(list []string) []string {
		if len(list) > limit {
			changed = true
			return list[:limit]
		}
		return list
	}
	v.Themes = capList(v.Themes)
	v.MoodDescriptors = capList(v.MoodDescriptors)
	v.RelationshipTerms = capList(v.RelationshipTerms)
	v.CommunicationStyle.Tone = capList(v.CommunicationStyle.Tone)
	v.CommunicationStyle.SupportLanguage = capList(v.CommunicationStyle.SupportLanguage)
	if len(v.Evolution) > limit {
		v.Evolution = v.Evolution[len(v.Evolution)-limit:]
		changed = true
	}
	return changed
}

// cloneBundle deep copies a bundle through its JSON form.
func cloneBundle(b *Bundle) *Bundle {
	data, err := json.Marshal(b)
	if err == nil {
		var out Bundle
		if err = json.Unmarshal(data, &out); err == nil {
			return &out
		}
	}
	slog.Warn("failed to clone context bundle, optimizing a shallow copy", "error", err)
	shallow := *b
	return &shallow
}
