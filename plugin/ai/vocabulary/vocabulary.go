// Package vocabulary derives the recurring emotional language of a
// participant: themes, mood descriptors, relationship terms, communication
// style and how the vocabulary shifts over time.
package vocabulary

import (
	"fmt"
	"time"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

// Scope selects which records feed the extractor.
type Scope string

const (
	ScopeRecent      Scope = "recent"
	ScopeSignificant Scope = "significant"
	ScopeAll         Scope = "all"
)

// ParseScope validates a scope name. An empty name means ScopeRecent.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeRecent, nil
	case ScopeRecent, ScopeSignificant, ScopeAll:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown vocabulary scope %q", s)
}

// Config tunes the extractor.
type Config struct {
	SourceScope         Scope   // recent, significant or all (default: recent)
	RecentLimit         int     // Records kept by the recent scope (default: 20)
	SignificanceCutoff  float64 // Significance the significant scope must exceed (default: 6)
	MaxTermsPerCategory int     // Terms per category (default: 10)
	IncludeEvolution    bool    // Compute vocabulary evolution
	MinEvolutionRecords int     // Records needed before evolution is computed (default: 10)
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		SourceScope:         ScopeRecent,
		RecentLimit:         20,
		SignificanceCutoff:  6,
		MaxTermsPerCategory: 10,
		IncludeEvolution:    true,
		MinEvolutionRecords: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SourceScope == "" {
		c.SourceScope = d.SourceScope
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = d.RecentLimit
	}
	if c.SignificanceCutoff <= 0 {
		c.SignificanceCutoff = d.SignificanceCutoff
	}
	if c.MaxTermsPerCategory <= 0 {
		c.MaxTermsPerCategory = d.MaxTermsPerCategory
	}
	if c.MinEvolutionRecords < d.MinEvolutionRecords {
		c.MinEvolutionRecords = d.MinEvolutionRecords
	}
	return c
}

// Expressiveness is the dominant way a participant expresses feelings.
type Expressiveness string

const (
	ExpressDirect       Expressiveness = "direct"
	ExpressMetaphorical Expressiveness = "metaphorical"
	ExpressAnalytical   Expressiveness = "analytical"
	ExpressEmotional    Expressiveness = "emotional"
)

// CommunicationStyle summarizes tone and phrasing.
type CommunicationStyle struct {
	Tone            []string       `json:"tone"`
	Expressiveness  Expressiveness `json:"expressiveness"`
	SupportLanguage []string       `json:"supportLanguage"`
}

// EvolutionEntry compares two adjacent windows of records.
type EvolutionEntry struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	NewTerms        []string  `json:"newTerms"`
	IncreasingTerms []string  `json:"increasingTerms"`
	DecreasingTerms []string  `json:"decreasingTerms"`
}

// Vocabulary is the extractor output.
type Vocabulary struct {
	Themes             []string           `json:"themes"`
	MoodDescriptors    []string           `json:"moodDescriptors"`
	RelationshipTerms  []string           `json:"relationshipTerms"`
	CommunicationStyle CommunicationStyle `json:"communicationStyle"`
	Evolution          []EvolutionEntry   `json:"evolution"`
	Status             memory.DataStatus  `json:"status"`
}

// Empty returns the neutral vocabulary used when no record is relevant.
func Empty() *Vocabulary {
	return &Vocabulary{
		Themes:            []string{},
		MoodDescriptors:   []string{"neutral"},
		RelationshipTerms: []string{},
		CommunicationStyle: CommunicationStyle{
			Tone:            []string{"neutral"},
			Expressiveness:  ExpressDirect,
			SupportLanguage: []string{},
		},
		Evolution: []EvolutionEntry{},
		Status:    memory.StatusEmpty,
	}
}

// Extractor turns memory records into a Vocabulary. Safe for concurrent use.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor; zero config fields take defaults.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract filters the records to the participant, applies the source scope
// and derives the vocabulary.
func (e *Extractor) Extract(records []memory.Record, participantID string) *Vocabulary {
	valid, _ := memory.ValidRecords(records)
	relevant := memory.FilterRelevant(valid, participantID, false)
	scoped := e.scope(memory.SortByRecency(relevant))
	if len(scoped) == 0 {
		return Empty()
	}

	v := &Vocabulary{
		Themes:             e.themes(scoped),
		MoodDescriptors:    e.descriptors(scoped),
		RelationshipTerms:  e.relationshipTerms(scoped, participantID),
		CommunicationStyle: communicationStyle(scoped),
		Evolution:          []EvolutionEntry{},
		Status:             memory.StatusOK,
	}
	if e.cfg.IncludeEvolution && len(scoped) >= e.cfg.MinEvolutionRecords {
		v.Evolution = evolution(scoped)
	}
	return v
}

// scope expects records most recent first and keeps that order.
func (e *Extractor) scope(recent []memory.Record) []memory.Record {
	switch e.cfg.SourceScope {
	case ScopeSignificant:
		kept := make([]memory.Record, 0, len(recent))
		for i := range recent {
			if recent[i].SignificanceScore() > e.cfg.SignificanceCutoff {
				kept = append(kept, recent[i])
			}
		}
		return kept
	case ScopeAll:
		return recent
	default:
		if len(recent) > e.cfg.RecentLimit {
			return recent[:e.cfg.RecentLimit]
		}
		return recent
	}
}
