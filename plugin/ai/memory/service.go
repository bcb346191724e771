package memory

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	pipelineerrors "github.com/hrygo/emocontext/internal/errors"
	"github.com/hrygo/emocontext/store"
)

// Service implements MemoryService with two layers.
// - Buffer: in-memory sliding window of recently saved records
// - Store: SQLite or PostgreSQL persistence, optional
type Service struct {
	buffer *RecordBuffer
	store  *store.Store
}

// NewService creates a new memory service.
// store: persistence for records (can be nil for buffer-only mode)
// maxBuffered: maximum records kept in memory per participant
func NewService(s *store.Store, maxBuffered int) *Service {
	svc := &Service{
		buffer: NewRecordBuffer(maxBuffered),
		store:  s,
	}
	if s == nil {
		slog.Warn("memory service initialized without store (records are not persisted)")
	}
	return svc
}

// Close releases resources held by the service.
func (s *Service) Close() {
	if s.buffer != nil {
		s.buffer.Close()
	}
}

// ListRecords reads from the store when one is configured, otherwise from
// the buffer. Payloads that fail to decode are skipped.
func (s *Service) ListRecords(ctx context.Context, participantID string, limit int) ([]Record, error) {
	if err := store.ValidateParticipantID(participantID); err != nil {
		return nil, pipelineerrors.InvalidArgument(err.Error())
	}
	if s.store == nil {
		return s.buffer.Records(participantID, limit), nil
	}

	find := &store.FindEmotionalMemory{Limit: limit}
	if participantID != "" {
		find.ParticipantID = &participantID
	}
	rows, err := s.store.ListEmotionalMemories(ctx, find)
	if err != nil {
		return nil, pipelineerrors.StoreUnavailable(err).WithContext("participant_id", participantID)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		record, err := FromEmotionalMemory(row)
		if err != nil {
			slog.Warn("skipping undecodable memory payload", "id", row.ID, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// SaveRecord validates, buffers and persists a record.
func (s *Service) SaveRecord(ctx context.Context, record Record) (string, error) {
	if record.ID == "" {
		record.ID = shortuuid.New()
	}
	if err := record.Validate(); err != nil {
		return "", err
	}

	if s.store != nil {
		row, err := ToEmotionalMemory(&record)
		if err != nil {
			return "", err
		}
		if _, err := s.store.UpsertEmotionalMemory(ctx, row); err != nil {
			return "", pipelineerrors.StoreUnavailable(err).WithContext("record_id", record.ID)
		}
	}
	s.buffer.Add(record)
	return record.ID, nil
}

// ForgetParticipant removes the participant's records from both layers.
func (s *Service) ForgetParticipant(ctx context.Context, participantID string) error {
	if participantID == "" {
		return pipelineerrors.InvalidArgument("participant id is required")
	}
	if err := store.ValidateParticipantID(participantID); err != nil {
		return pipelineerrors.InvalidArgument(err.Error())
	}
	if s.store != nil {
		if err := s.store.DeleteEmotionalMemory(ctx, &store.DeleteEmotionalMemory{ParticipantID: &participantID}); err != nil {
			return pipelineerrors.StoreUnavailable(err).WithContext("participant_id", participantID)
		}
	}
	s.buffer.Forget(participantID)
	return nil
}

// HasStore returns true if persistence is configured.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// ToEmotionalMemory converts a record into its stored row.
func ToEmotionalMemory(r *Record) (*store.EmotionalMemory, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode record %s", r.ID)
	}
	ids := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.ID)
	}
	return &store.EmotionalMemory{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		ParticipantIDs: ids,
		Significance:   r.SignificanceScore(),
		Payload:        string(payload),
	}, nil
}

// FromEmotionalMemory decodes a stored row back into a record.
func FromEmotionalMemory(row *store.EmotionalMemory) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(row.Payload), &r); err != nil {
		return Record{}, errors.Wrapf(err, "failed to decode record %s", row.ID)
	}
	if r.ID == "" {
		r.ID = row.ID
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = row.Timestamp
	}
	return r, nil
}

var _ MemoryService = (*Service)(nil)
