// Package timeline builds a chronological, relationship-aware sequence of a
// participant's significant emotional events.
package timeline

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

// NoDataSummary is the relationship summary of an empty timeline. Callers
// may branch on it; Status carries the same information as a typed value.
const NoDataSummary = "No timeline data available."

// NoRelationshipSummary is used when events exist but none carries
// relationship dynamics.
const NoRelationshipSummary = "No relationship data available."

const maxSummaryRunes = 140

// Config tunes the builder.
type Config struct {
	MaxRecentEvents    int     // Suffix length of the event sequence (default: 10)
	KeyMomentThreshold float64 // Significance at or above which an event is key (default: 7)
	MaxKeyMoments      int     // Key moments kept, ranked by significance (default: 5)
	MaxPatterns        int     // Interaction patterns named in the summary (default: 3)
	RelationshipScoped bool    // Keep only relationally relevant records
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		MaxRecentEvents:    10,
		KeyMomentThreshold: 7,
		MaxKeyMoments:      5,
		MaxPatterns:        3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRecentEvents <= 0 {
		c.MaxRecentEvents = d.MaxRecentEvents
	}
	if c.KeyMomentThreshold <= 0 {
		c.KeyMomentThreshold = d.KeyMomentThreshold
	}
	if c.MaxKeyMoments <= 0 {
		c.MaxKeyMoments = d.MaxKeyMoments
	}
	if c.MaxPatterns <= 0 {
		c.MaxPatterns = d.MaxPatterns
	}
	return c
}

// Event is one record projected onto the timeline.
type Event struct {
	RecordID       string                      `json:"recordId"`
	Timestamp      time.Time                   `json:"timestamp"`
	Summary        string                      `json:"summary"`
	PrimaryEmotion string                      `json:"primaryEmotion,omitempty"`
	MoodScore      float64                     `json:"moodScore"`
	Significance   float64                     `json:"significance"`
	Category       memory.SignificanceCategory `json:"category"`
	DeltaType      memory.MoodDeltaType        `json:"deltaType,omitempty"`
	Participants   []string                    `json:"participants"`
}

// KeyMoment is an event worth surfacing under aggressive truncation.
type KeyMoment struct {
	Event
	Reason string `json:"reason"`
}

// RelationshipStats are the means over records carrying relationship
// dynamics.
type RelationshipStats struct {
	Quality   float64  `json:"quality"`
	Trust     float64  `json:"trust"`
	Stability float64  `json:"stability"`
	Patterns  []string `json:"patterns"`
	Samples   int      `json:"samples"`
}

// Timeline is the builder output.
type Timeline struct {
	RecentEvents        []Event            `json:"recentEvents"`
	KeyMoments          []KeyMoment        `json:"keyMoments"`
	RelationshipSummary string             `json:"relationshipSummary"`
	Relationship        *RelationshipStats `json:"relationship,omitempty"`
	Status              memory.DataStatus  `json:"status"`
}

// Empty returns the timeline used when no record is relevant.
func Empty() *Timeline {
	return &Timeline{
		RecentEvents:        []Event{},
		KeyMoments:          []KeyMoment{},
		RelationshipSummary: NoDataSummary,
		Status:              memory.StatusEmpty,
	}
}

// Builder turns memory records into a Timeline. Safe for concurrent use.
type Builder struct {
	cfg Config
}

// NewBuilder creates a builder; zero config fields take defaults.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build filters the records to the participant and projects them onto a
// chronological timeline.
func (b *Builder) Build(records []memory.Record, participantID string) *Timeline {
	valid, _ := memory.ValidRecords(records)
	relevant := memory.FilterRelevant(valid, participantID, b.cfg.RelationshipScoped)
	if len(relevant) == 0 {
		return Empty()
	}

	ordered := memory.SortChronological(relevant)
	events := make([]Event, len(ordered))
	for i := range ordered {
		events[i] = newEvent(&ordered[i])
	}

	recent := events
	if len(recent) > b.cfg.MaxRecentEvents {
		recent = recent[len(recent)-b.cfg.MaxRecentEvents:]
	}

	stats := b.relationshipStats(ordered)
	return &Timeline{
		RecentEvents:        append([]Event(nil), recent...),
		KeyMoments:          b.keyMoments(ordered, events),
		RelationshipSummary: summarize(stats),
		Relationship:        stats,
		Status:              memory.StatusOK,
	}
}

// keyMoments keeps events at or above the significance threshold, or
// carrying a mood-repair or celebration delta. When there are too many the
// most significant win (later events break ties) and the survivors are
// returned in chronological order.
func (b *Builder) keyMoments(ordered []memory.Record, events []Event) []KeyMoment {
	moments := make([]KeyMoment, 0)
	for i := range ordered {
		if reason := b.keyReason(&ordered[i]); reason != "" {
			moments = append(moments, KeyMoment{Event: events[i], Reason: reason})
		}
	}
	if len(moments) <= b.cfg.MaxKeyMoments {
		return moments
	}

	ranked := make([]KeyMoment, len(moments))
	copy(ranked, moments)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Significance != ranked[j].Significance {
			return ranked[i].Significance > ranked[j].Significance
		}
		return ranked[i].Timestamp.After(ranked[j].Timestamp)
	})
	ranked = ranked[:b.cfg.MaxKeyMoments]
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Timestamp.Before(ranked[j].Timestamp)
	})
	return ranked
}

func (b *Builder) keyReason(r *memory.Record) string {
	var reasons []string
	if r.SignificanceScore() >= b.cfg.KeyMomentThreshold {
		reasons = append(reasons, "high significance")
	}
	if d := r.Analysis.MoodDelta; d != nil {
		switch d.Type {
		case memory.DeltaMoodRepair:
			reasons = append(reasons, "mood repair")
		case memory.DeltaCelebration:
			reasons = append(reasons, "celebration")
		}
	}
	return strings.Join(reasons, ", ")
}

func (b *Builder) relationshipStats(ordered []memory.Record) *RelationshipStats {
	var quality, trust, stability float64
	samples := 0
	patterns := memory.NewTermCounter()
	for i := range ordered {
		if ordered[i].Relationship == nil {
			continue
		}
		rel := ordered[i].Relationship.Clamped()
		samples++
		quality += rel.Quality
		trust += rel.Trust
		stability += rel.Stability
		for _, p := range rel.InteractionPatterns {
			patterns.Add(p, 1)
		}
	}
	if samples == 0 {
		return nil
	}

	n := float64(samples)
	return &RelationshipStats{
		Quality:   round2(quality / n),
		Trust:     round2(trust / n),
		Stability: round2(stability / n),
		Patterns:  patterns.Top(b.cfg.MaxPatterns),
		Samples:   samples,
	}
}

func summarize(stats *RelationshipStats) string {
	if stats == nil {
		return NoRelationshipSummary
	}
	s := fmt.Sprintf("Relationship quality %.1f/10, trust %.1f/10, stability %.2f across %d %s.",
		stats.Quality, stats.Trust, stats.Stability, stats.Samples, pluralRecords(stats.Samples))
	if len(stats.Patterns) > 0 {
		s += " Frequent patterns: " + strings.Join(stats.Patterns, ", ") + "."
	}
	return s
}

func newEvent(r *memory.Record) Event {
	names := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p.Name != "" {
			names = append(names, p.Name)
		} else {
			names = append(names, p.ID)
		}
	}
	e := Event{
		RecordID:       r.ID,
		Timestamp:      r.Timestamp,
		Summary:        truncate(strings.TrimSpace(r.Content), maxSummaryRunes),
		PrimaryEmotion: r.Analysis.PrimaryEmotion,
		MoodScore:      r.MoodScore(),
		Significance:   r.SignificanceScore(),
		Category:       r.SignificanceCategory(),
		Participants:   names,
	}
	if r.Analysis.MoodDelta != nil {
		e.DeltaType = r.Analysis.MoodDelta.Type
	}
	return e
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes-3]) + "..."
}

func pluralRecords(n int) string {
	if n == 1 {
		return "record"
	}
	return "records"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
