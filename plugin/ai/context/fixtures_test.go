package context

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hrygo/emocontext/plugin/ai/memory"
	"github.com/hrygo/emocontext/plugin/ai/mood"
	"github.com/hrygo/emocontext/plugin/ai/timeline"
	"github.com/hrygo/emocontext/plugin/ai/vocabulary"
)

var baseTime = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func testRecord(id string, hour int, score, significance float64, participantIDs ...string) memory.Record {
	participants := make([]memory.Participant, 0, len(participantIDs))
	for _, pid := range participantIDs {
		participants = append(participants, memory.Participant{ID: pid, Name: pid, Role: memory.RolePrimary})
	}
	return memory.Record{
		ID:           id,
		Timestamp:    baseTime.Add(time.Duration(hour) * time.Hour),
		Content:      "we talked about the week " + id,
		Participants: participants,
		Analysis: memory.EmotionalAnalysis{
			PrimaryEmotion: "joy",
			Confidence:     0.8,
			Themes:         []string{"work", "family"},
			MoodScoring:    &memory.MoodScoring{Score: score, Descriptors: []string{"calm", "hopeful"}, Confidence: 0.8},
		},
		Relationship: &memory.RelationshipDynamics{
			Quality:             7,
			Trust:               8,
			Stability:           0.7,
			InteractionPatterns: []string{"check-in"},
		},
		Significance: memory.Significance{Overall: significance},
		Processing:   memory.ProcessingMetadata{Confidence: 0.9},
	}
}

// richHistory builds n records for alice with many distinct themes so the
// bundle is large enough to need optimization.
func richHistory(n int) []memory.Record {
	records := make([]memory.Record, 0, n)
	for i := 0; i < n; i++ {
		r := testRecord(fmt.Sprintf("r%02d", i), i, float64(3+i%5), float64(4+i%6), "alice", "bob")
		r.Analysis.Themes = append(r.Analysis.Themes, fmt.Sprintf("topic %d", i), fmt.Sprintf("hobby %d", i%7))
		r.Analysis.MoodScoring.Descriptors = append(r.Analysis.MoodScoring.Descriptors, fmt.Sprintf("feeling %d", i%9))
		records = append(records, r)
	}
	return records
}

// countingLeaves wraps the real leaves and counts invocations.
type countingLeaves struct {
	mood       *mood.Tokenizer
	timeline   *timeline.Builder
	vocabulary *vocabulary.Extractor

	moodCalls, timelineCalls, vocabularyCalls atomic.Int64
}

func newCountingLeaves() *countingLeaves {
	return &countingLeaves{
		mood:       mood.NewTokenizer(mood.DefaultConfig()),
		timeline:   timeline.NewBuilder(timeline.DefaultConfig()),
		vocabulary: vocabulary.NewExtractor(vocabulary.DefaultConfig()),
	}
}

type countingMood struct{ *countingLeaves }

func (c countingMood) Tokenize(records []memory.Record) *mood.Context {
	c.moodCalls.Add(1)
	return c.mood.Tokenize(records)
}

type countingTimeline struct{ *countingLeaves }

func (c countingTimeline) Build(records []memory.Record, participantID string) *timeline.Timeline {
	c.timelineCalls.Add(1)
	return c.timeline.Build(records, participantID)
}

type countingVocabulary struct{ *countingLeaves }

func (c countingVocabulary) Extract(records []memory.Record, participantID string) *vocabulary.Vocabulary {
	c.vocabularyCalls.Add(1)
	return c.vocabulary.Extract(records, participantID)
}

func (c *countingLeaves) install(s *Service) *Service {
	return s.WithLeaves(countingMood{c}, countingTimeline{c}, countingVocabulary{c})
}

func (c *countingLeaves) calls() [3]int64 {
	return [3]int64{c.moodCalls.Load(), c.timelineCalls.Load(), c.vocabularyCalls.Load()}
}
