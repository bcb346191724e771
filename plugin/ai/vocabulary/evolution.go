package vocabulary

import (
	"sort"
	"time"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

const (
	minWindowSize     = 5
	minTrailingWindow = 3
	maxEvolutionTerms = 5
	growthRatio       = 1.5
	minShiftCount     = 2
)

type window struct {
	from, to time.Time
	counts   map[string]int
}

// evolution expects records most recent first. It splits them into windows
// of max(5, n/4), drops a trailing window smaller than 3, and compares each
// window with the next older one. Entries are returned oldest first and only
// when something changed.
func evolution(recent []memory.Record) []EvolutionEntry {
	size := len(recent) / 4
	if size < minWindowSize {
		size = minWindowSize
	}

	var windows []window
	for start := 0; start < len(recent); start += size {
		end := start + size
		if end > len(recent) {
			end = len(recent)
		}
		if end-start < minTrailingWindow {
			break
		}
		windows = append(windows, newWindow(recent[start:end]))
	}

	entries := []EvolutionEntry{}
	// windows[0] is the newest; walk pairs from the oldest.
	for i := len(windows) - 2; i >= 0; i-- {
		newer, older := windows[i], windows[i+1]
		entry := EvolutionEntry{
			From:            older.from,
			To:              newer.to,
			NewTerms:        newTerms(newer, older),
			IncreasingTerms: shifted(newer, older, false),
			DecreasingTerms: shifted(older, newer, true),
		}
		if len(entry.NewTerms)+len(entry.IncreasingTerms)+len(entry.DecreasingTerms) > 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

func newWindow(records []memory.Record) window {
	w := window{
		from:   records[len(records)-1].Timestamp,
		to:     records[0].Timestamp,
		counts: make(map[string]int),
	}
	for i := range records {
		for _, t := range records[i].Themes() {
			if n := memory.NormalizeTerm(t); n != "" {
				w.counts[n]++
			}
		}
		for _, d := range records[i].MoodDescriptors() {
			if n := memory.NormalizeTerm(d); n != "" {
				w.counts[n]++
			}
		}
	}
	return w
}

func newTerms(newer, older window) []string {
	var terms []string
	for term := range newer.counts {
		if older.counts[term] == 0 {
			terms = append(terms, term)
		}
	}
	return rankByCount(terms, newer.counts)
}

// shifted returns terms seen at least twice in a whose count there exceeds
// growthRatio times their count in b. Terms absent from b count only when
// includeAbsent is set; a term missing from the older window is reported as
// new instead.
func shifted(a, b window, includeAbsent bool) []string {
	var terms []string
	for term, countA := range a.counts {
		if countA < minShiftCount {
			continue
		}
		countB := b.counts[term]
		if countB == 0 {
			if includeAbsent {
				terms = append(terms, term)
			}
			continue
		}
		if float64(countA)/float64(countB) > growthRatio {
			terms = append(terms, term)
		}
	}
	return rankByCount(terms, a.counts)
}

func rankByCount(terms []string, counts map[string]int) []string {
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxEvolutionTerms {
		terms = terms[:maxEvolutionTerms]
	}
	if terms == nil {
		return []string{}
	}
	return terms
}
