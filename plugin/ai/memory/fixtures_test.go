package memory

import (
	"time"
)

var baseTime = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func testRecord(id string, hour int, participantIDs ...string) Record {
	participants := make([]Participant, 0, len(participantIDs))
	for _, pid := range participantIDs {
		participants = append(participants, Participant{ID: pid, Name: pid, Role: RolePrimary})
	}
	return Record{
		ID:           id,
		Timestamp:    baseTime.Add(time.Duration(hour) * time.Hour),
		Content:      "record " + id,
		Participants: participants,
		Analysis: EmotionalAnalysis{
			PrimaryEmotion: "joy",
			Themes:         []string{"work"},
			MoodScoring:    &MoodScoring{Score: 6, Descriptors: []string{"calm"}, Confidence: 0.8},
		},
		Significance: Significance{Overall: 5},
		Processing:   ProcessingMetadata{Confidence: 0.9},
	}
}
