package context

import (
	"math"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

// Quality weights. They sum to 1.
const (
	weightCompleteness = 0.3
	weightRelevance    = 0.25
	weightMoodConf     = 0.25
	weightKeyMoment    = 0.2
)

// recencyDecay is the weight ratio between consecutive records, newest first.
const recencyDecay = 0.9

// ValidateContextQuality scores a bundle in [0,1] from the completeness of
// the three leaf outputs, the relevance score, the mood confidence and the
// presence of a key moment. Empty bundles score below 0.5.
func ValidateContextQuality(b *Bundle) float64 {
	return qualityMetrics(b).Score
}

func qualityMetrics(b *Bundle) QualityMetrics {
	if b == nil {
		return QualityMetrics{}
	}

	var m QualityMetrics
	var parts float64
	if b.MoodContext != nil {
		parts += statusWeight(b.MoodContext.Status)
		m.MoodConfidence = clampUnit(b.MoodContext.CurrentMood.Confidence)
	}
	if b.TimelineSummary != nil {
		parts += statusWeight(b.TimelineSummary.Status)
		m.HasKeyMoment = len(b.TimelineSummary.KeyMoments) > 0
	}
	if b.Vocabulary != nil {
		parts += statusWeight(b.Vocabulary.Status)
	}
	m.Completeness = parts / 3
	m.Relevance = clampUnit(b.Optimization.RelevanceScore)

	score := weightCompleteness*m.Completeness +
		weightRelevance*m.Relevance +
		weightMoodConf*m.MoodConfidence
	if m.HasKeyMoment {
		score += weightKeyMoment
	}
	m.Score = round3(clampUnit(score))
	return m
}

func statusWeight(status memory.DataStatus) float64 {
	switch status {
	case memory.StatusOK:
		return 1
	case memory.StatusInsufficient:
		return 0.5
	default:
		return 0
	}
}

// relevanceScore averages the fraction of valid records that are relevant
// with the recency-weighted quality of the relevant records.
func relevanceScore(validCount int, relevant []memory.Record) float64 {
	if validCount == 0 || len(relevant) == 0 {
		return 0
	}
	fraction := float64(len(relevant)) / float64(validCount)

	weight, sum, total := 1.0, 0.0, 0.0
	for _, r := range memory.SortByRecency(relevant) {
		sum += weight * r.QualityScore()
		total += weight
		weight *= recencyDecay
	}
	return round3(clampUnit(0.5*fraction + 0.5*sum/total))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
