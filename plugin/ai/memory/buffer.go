package memory

import (
	"context"
	"sync"
	"time"
)

const (
	defaultBufferSize    = 200
	bufferCleanupPeriod  = 10 * time.Minute
	bufferIdleExpiration = time.Hour
)

// RecordBuffer keeps recent records per participant in a sliding window.
// Thread-safe for concurrent access.
type RecordBuffer struct {
	mu           sync.RWMutex
	participants map[string]*bufferData
	maxSize      int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type bufferData struct {
	records    []Record
	lastAccess time.Time
}

// NewRecordBuffer creates a buffer holding at most maxSize records per
// participant (default 200).
func NewRecordBuffer(maxSize int) *RecordBuffer {
	if maxSize <= 0 {
		maxSize = defaultBufferSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &RecordBuffer{
		participants: make(map[string]*bufferData),
		maxSize:      maxSize,
		ctx:          ctx,
		cancel:       cancel,
	}
	b.wg.Add(1)
	go b.cleanupLoop()
	return b
}

// Close stops the cleanup goroutine.
func (b *RecordBuffer) Close() {
	b.cancel()
	b.wg.Wait()
}

// Add appends a record to the window of every participant it includes.
// Records without participants are kept under the empty key only.
// A record whose id is already buffered for a participant replaces it.
func (b *RecordBuffer) Add(record Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	keys := []string{""}
	for _, p := range record.Participants {
		if p.ID != "" {
			keys = append(keys, p.ID)
		}
	}
	for _, key := range keys {
		data, ok := b.participants[key]
		if !ok {
			data = &bufferData{records: make([]Record, 0, 8)}
			b.participants[key] = data
		}
		data.lastAccess = now
		if idx := indexOf(data.records, record.ID); idx >= 0 {
			data.records[idx] = record
			continue
		}
		data.records = append(data.records, record)
		if len(data.records) > b.maxSize {
			data.records = data.records[len(data.records)-b.maxSize:]
		}
	}
}

// Records returns up to limit of the most recently added records for the
// participant, oldest first. An empty participantID reads every record.
func (b *RecordBuffer) Records(participantID string, limit int) []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.participants[participantID]
	if !ok || len(data.records) == 0 {
		return []Record{}
	}
	data.lastAccess = time.Now()

	records := data.records
	if limit > 0 && limit < len(records) {
		records = records[len(records)-limit:]
	}
	result := make([]Record, len(records))
	copy(result, records)
	return result
}

// Forget drops the participant's window and removes the participant's
// records from every other window.
func (b *RecordBuffer) Forget(participantID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.participants, participantID)
	for _, data := range b.participants {
		kept := data.records[:0]
		for _, r := range data.records {
			if !r.HasParticipant(participantID) {
				kept = append(kept, r)
			}
		}
		data.records = kept
	}
}

// ParticipantCount returns the number of buffered participants.
func (b *RecordBuffer) ParticipantCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	count := len(b.participants)
	if _, ok := b.participants[""]; ok {
		count--
	}
	return count
}

// cleanupLoop drops participants idle for more than an hour.
func (b *RecordBuffer) cleanupLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(bufferCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.evictIdle(time.Now())
		}
	}
}

func (b *RecordBuffer) evictIdle(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, data := range b.participants {
		if now.Sub(data.lastAccess) > bufferIdleExpiration {
			delete(b.participants, key)
		}
	}
}

func indexOf(records []Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
