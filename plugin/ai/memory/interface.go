package memory

import (
	"context"
)

// RecordProvider supplies the emotional memory records a context is built
// from. Implementations return records in any order; the pipeline sorts.
type RecordProvider interface {
	// ListRecords returns up to limit records that include the participant.
	// An empty participantID lists every record; limit <= 0 means no limit.
	ListRecords(ctx context.Context, participantID string, limit int) ([]Record, error)
}

// MemoryService stores and serves emotional memory records.
type MemoryService interface {
	RecordProvider

	// SaveRecord stores a record and returns its id. A record without an id
	// is assigned one.
	SaveRecord(ctx context.Context, record Record) (string, error)

	// ForgetParticipant removes every record that includes the participant.
	ForgetParticipant(ctx context.Context, participantID string) error
}
