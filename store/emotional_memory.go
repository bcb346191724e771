package store

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// EmotionalMemory is the persisted form of an emotional memory record.
// The full record travels as a JSON payload; the indexed columns exist for
// participant and recency lookups.
type EmotionalMemory struct {
	ID             string
	Timestamp      time.Time
	ParticipantIDs []string
	Significance   float64
	Payload        string
	CreatedTs      int64
}

// FindEmotionalMemory specifies the conditions for finding emotional memories.
type FindEmotionalMemory struct {
	ID            *string
	ParticipantID *string
	Since         *time.Time
	Limit         int
	Offset        int
}

// DeleteEmotionalMemory specifies the conditions for deleting emotional memories.
type DeleteEmotionalMemory struct {
	ID            *string
	ParticipantID *string
}

// MaxListLimit caps a single list query.
const MaxListLimit = 1000

// ErrInvalidParticipantID is returned for participant ids that cannot be
// stored in the delimited participant column.
var ErrInvalidParticipantID = errors.New("participant id must not contain a comma")

// ValidateParticipantID rejects ids containing the list delimiter.
func ValidateParticipantID(id string) error {
	if strings.Contains(id, ",") {
		return errors.Wrapf(ErrInvalidParticipantID, "participant id %q", id)
	}
	return nil
}

// EncodeParticipantIDs stores participant ids as ",a,b," so a substring
// search for ParticipantToken matches whole ids. Blank ids are skipped.
func EncodeParticipantIDs(ids []string) (string, error) {
	var sb strings.Builder
	sb.WriteString(",")
	for _, id := range ids {
		if err := ValidateParticipantID(id); err != nil {
			return "", err
		}
		if id == "" {
			continue
		}
		sb.WriteString(id)
		sb.WriteString(",")
	}
	return sb.String(), nil
}

// DecodeParticipantIDs reverses EncodeParticipantIDs.
func DecodeParticipantIDs(encoded string) []string {
	parts := strings.Split(strings.Trim(encoded, ","), ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// ParticipantToken returns the delimited form of one participant id as it
// appears inside an encoded participant list.
func ParticipantToken(participantID string) (string, error) {
	if err := ValidateParticipantID(participantID); err != nil {
		return "", err
	}
	return "," + participantID + ",", nil
}
