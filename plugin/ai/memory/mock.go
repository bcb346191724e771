package memory

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockRecordProvider serves a fixed record set and counts calls.
type MockRecordProvider struct {
	mu      sync.RWMutex
	records []Record
	err     error
	calls   atomic.Int64
}

// NewMockRecordProvider creates a provider that serves the given records.
func NewMockRecordProvider(records ...Record) *MockRecordProvider {
	return &MockRecordProvider{records: records}
}

// ListRecords returns the matching records, or the configured error.
func (m *MockRecordProvider) ListRecords(ctx context.Context, participantID string, limit int) ([]Record, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	result := make([]Record, 0, len(m.records))
	for i := range m.records {
		if participantID == "" || m.records[i].HasParticipant(participantID) {
			result = append(result, m.records[i])
		}
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// SetRecords replaces the served records.
func (m *MockRecordProvider) SetRecords(records ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// SetError makes every subsequent call fail with err.
func (m *MockRecordProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of ListRecords calls.
func (m *MockRecordProvider) Calls() int64 {
	return m.calls.Load()
}

var _ RecordProvider = (*MockRecordProvider)(nil)
