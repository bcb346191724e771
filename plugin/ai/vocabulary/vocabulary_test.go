package vocabulary

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

var baseTime = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func record(id string, hour int, themes ...string) memory.Record {
	return memory.Record{
		ID:           id,
		Timestamp:    baseTime.Add(time.Duration(hour) * time.Hour),
		Participants: []memory.Participant{{ID: "alice", Name: "Alice", Role: memory.RolePrimary}},
		Analysis:     memory.EmotionalAnalysis{Themes: themes},
		Significance: memory.Significance{Overall: 5},
	}
}

func TestExtract_Empty(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	v := e.Extract(nil, "alice")
	assert.Equal(t, []string{}, v.Themes)
	assert.Equal(t, []string{"neutral"}, v.MoodDescriptors)
	assert.Equal(t, []string{}, v.RelationshipTerms)
	assert.Equal(t, CommunicationStyle{Tone: []string{"neutral"}, Expressiveness: ExpressDirect, SupportLanguage: []string{}}, v.CommunicationStyle)
	assert.Equal(t, []EvolutionEntry{}, v.Evolution)
	assert.Equal(t, memory.StatusEmpty, v.Status)

	// Records of other participants are ignored.
	other := record("x", 0, "work")
	other.Participants = []memory.Participant{{ID: "bob"}}
	assert.Equal(t, memory.StatusEmpty, e.Extract([]memory.Record{other}, "alice").Status)
}

func TestExtract_Themes(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	r1 := record("r1", 0, "Work", "family")
	r1.Analysis.Patterns = []memory.BehavioralPattern{{Type: memory.PatternSupportSeeking, Significance: 8}}
	records := []memory.Record{r1, record("r2", 1, "work!"), record("r3", 2, "health")}

	v := e.Extract(records, "alice")
	assert.Equal(t, []string{"seeking support", "work", "health", "family"}, v.Themes)

	capped := NewExtractor(Config{MaxTermsPerCategory: 2}).Extract(records, "alice")
	assert.Equal(t, []string{"seeking support", "work"}, capped.Themes)
}

func TestExtract_MoodDescriptors(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	anxious := record("r1", 0)
	anxious.Significance.Overall = 9
	anxious.Analysis.MoodScoring = &memory.MoodScoring{Score: 3, Descriptors: []string{"Anxious"}, Confidence: 1}

	calm := record("r2", 1)
	calm.Significance.Overall = 4
	calm.Analysis.PrimaryEmotion = "Joy"
	calm.Analysis.Confidence = 0.8
	calm.Analysis.MoodScoring = &memory.MoodScoring{Score: 6, Descriptors: []string{"calm"}, Confidence: 0.5}

	v := e.Extract([]memory.Record{anxious, calm}, "alice")
	// anxious 0.9, joyful 0.32, calm 0.2
	assert.Equal(t, []string{"anxious", "joyful", "calm"}, v.MoodDescriptors)
}

func TestExtract_RelationshipTerms(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	r := record("r1", 0)
	r.Participants = append(r.Participants,
		memory.Participant{ID: "bob", Role: memory.RoleSecondary},
		memory.Participant{ID: "carol", Role: memory.RoleObserver},
	)
	r.Relationship = &memory.RelationshipDynamics{Quality: 8.5, InteractionPatterns: []string{"Open communication"}}
	r.Analysis.Patterns = []memory.BehavioralPattern{{Type: memory.PatternMoodRepair, Significance: 5}}

	strained := record("r0", -1)
	strained.Relationship = &memory.RelationshipDynamics{Quality: 2}

	v := e.Extract([]memory.Record{strained, r}, "alice")
	assert.Equal(t, []string{"open communication", "strong", "positive", "supportive", "connected", "challenging", "strained"}, v.RelationshipTerms)
}

func TestExtract_CommunicationStyle(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	t.Run("Tones and tie-broken expressiveness", func(t *testing.T) {
		upbeat := record("a", 0)
		upbeat.Content = "It feels like a storm passed."
		upbeat.Analysis.MoodScoring = &memory.MoodScoring{Score: 8}

		heavy := record("b", 1)
		heavy.Content = "I felt sad because of work."
		heavy.Significance.Overall = 9
		heavy.Analysis.MoodScoring = &memory.MoodScoring{Score: 2}

		plain := record("c", 2)
		plain.Content = "Went to the store."

		style := e.Extract([]memory.Record{upbeat, heavy, plain}, "alice").CommunicationStyle
		assert.Equal(t, []string{"balanced", "concerned", "serious", "important", "meaningful"}, style.Tone)
		assert.Equal(t, ExpressDirect, style.Expressiveness)
		assert.Equal(t, []string{}, style.SupportLanguage)
	})

	t.Run("Majority and support language", func(t *testing.T) {
		a := record("a", 0)
		a.Content = "I think it went well, however I'm tired."
		b := record("b", 1)
		b.Content = "Therefore I told her: I'm here for you."
		b.Analysis.Patterns = []memory.BehavioralPattern{{Type: memory.PatternSupportSeeking, Significance: 6}}
		c := record("c", 2)
		c.Content = "I feel happy."

		style := e.Extract([]memory.Record{a, b, c}, "alice").CommunicationStyle
		assert.Equal(t, ExpressAnalytical, style.Expressiveness)
		assert.Equal(t, []string{"here for you", "encouragement", "validation"}, style.SupportLanguage)
		assert.Contains(t, style.Tone, "supportive")
	})
}

func TestExtract_Scope(t *testing.T) {
	low := record("low", 0, "low")
	low.Significance.Overall = 5
	cutoff := record("cutoff", 1, "cutoff")
	cutoff.Significance.Overall = 6
	high := record("high", 2, "high")
	high.Significance.Overall = 7
	records := []memory.Record{low, cutoff, high}

	significant := NewExtractor(Config{SourceScope: ScopeSignificant}).Extract(records, "alice")
	assert.Equal(t, []string{"high"}, significant.Themes)

	recent := NewExtractor(Config{SourceScope: ScopeRecent, RecentLimit: 2}).Extract(records, "alice")
	assert.Equal(t, []string{"high", "cutoff"}, recent.Themes)

	all := NewExtractor(Config{SourceScope: ScopeAll}).Extract(records, "alice")
	assert.Len(t, all.Themes, 3)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeRecent, s)

	s, err = ParseScope("significant")
	require.NoError(t, err)
	assert.Equal(t, ScopeSignificant, s)

	_, err = ParseScope("everything")
	assert.Error(t, err)
}

func shiftingRecords(n int) []memory.Record {
	records := make([]memory.Record, n)
	for h := 0; h < n; h++ {
		theme := "work"
		if h >= n-3 {
			theme = "family"
		}
		records[h] = record(fmt.Sprintf("r%02d", h), h, theme)
	}
	return records
}

func TestExtract_Evolution(t *testing.T) {
	e := NewExtractor(Config{SourceScope: ScopeAll, IncludeEvolution: true})

	t.Run("Fewer than ten records", func(t *testing.T) {
		for n := 0; n <= 9; n++ {
			v := e.Extract(shiftingRecords(n), "alice")
			assert.Equal(t, []EvolutionEntry{}, v.Evolution, "n=%d", n)
		}
	})

	t.Run("Twelve records", func(t *testing.T) {
		// Windows of five: hours 11-7 and 6-2; hours 1-0 are dropped.
		v := e.Extract(shiftingRecords(12), "alice")
		require.Len(t, v.Evolution, 1)

		entry := v.Evolution[0]
		assert.Equal(t, baseTime.Add(2*time.Hour), entry.From)
		assert.Equal(t, baseTime.Add(11*time.Hour), entry.To)
		assert.Equal(t, []string{"family"}, entry.NewTerms)
		assert.Equal(t, []string{}, entry.IncreasingTerms)
		assert.Equal(t, []string{"work"}, entry.DecreasingTerms)
	})

	t.Run("Disabled", func(t *testing.T) {
		v := NewExtractor(Config{SourceScope: ScopeAll}).Extract(shiftingRecords(12), "alice")
		assert.Equal(t, []EvolutionEntry{}, v.Evolution)
	})

	t.Run("Entries oldest first", func(t *testing.T) {
		records := make([]memory.Record, 0, 15)
		for h := 0; h < 15; h++ {
			theme := []string{"alpha", "beta", "gamma"}[h/5]
			records = append(records, record(fmt.Sprintf("r%02d", h), h, theme, theme))
		}
		v := e.Extract(records, "alice")
		require.Len(t, v.Evolution, 2)
		assert.Equal(t, []string{"beta"}, v.Evolution[0].NewTerms)
		assert.Equal(t, []string{"gamma"}, v.Evolution[1].NewTerms)
		assert.True(t, v.Evolution[0].To.Before(v.Evolution[1].To))
	})
}
