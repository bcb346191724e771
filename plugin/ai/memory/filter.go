package memory

import (
	"log/slog"
	"sort"
)

// ValidRecords returns the records that pass Validate, in input order, and
// the number skipped. A bad record never affects the others.
func ValidRecords(records []Record) ([]Record, int) {
	valid := make([]Record, 0, len(records))
	skipped := 0
	for i := range records {
		if err := records[i].Validate(); err != nil {
			slog.Debug("skipping invalid memory record", "index", i, "error", err)
			skipped++
			continue
		}
		valid = append(valid, records[i])
	}
	return valid, skipped
}

// IsRelevant reports whether a record belongs in a participant's context.
// The participant must be present; when relationshipScoped is set the record
// must also show relational relevance: a support-seeking or mood-repair
// pattern, or a relationship dynamics block. An empty participant id matches
// every record.
func IsRelevant(r *Record, participantID string, relationshipScoped bool) bool {
	if participantID != "" && !r.HasParticipant(participantID) {
		return false
	}
	if relationshipScoped {
		return r.HasSupportPattern() || r.Relationship != nil
	}
	return true
}

// FilterRelevant keeps the records for which IsRelevant holds, in input order.
func FilterRelevant(records []Record, participantID string, relationshipScoped bool) []Record {
	result := make([]Record, 0, len(records))
	for i := range records {
		if IsRelevant(&records[i], participantID, relationshipScoped) {
			result = append(result, records[i])
		}
	}
	return result
}

// SortByRecency returns a copy sorted most recent first. Records sharing a
// timestamp keep their input order.
func SortByRecency(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

// SortChronological returns a copy sorted oldest first. Records sharing a
// timestamp keep their input order.
func SortChronological(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func sortStable(terms []string, less func(a, b string) bool) {
	sort.SliceStable(terms, func(i, j int) bool { return less(terms[i], terms[j]) })
}
