package memory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTerm case-folds a term, applies NFKC, strips punctuation and
// collapses whitespace. Hyphens and underscores become spaces.
func NormalizeTerm(term string) string {
	// A Caser is stateful, so each call folds with its own.
	term = cases.Fold().String(norm.NFKC.String(term))
	var sb strings.Builder
	sb.Grow(len(term))
	space := false
	for _, r := range term {
		switch {
		case r == '-' || r == '_' || unicode.IsSpace(r):
			space = sb.Len() > 0
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		default:
			if space {
				sb.WriteByte(' ')
				space = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TermCounter accumulates weighted terms and remembers first-seen order so
// ranking is deterministic.
type TermCounter struct {
	weights map[string]float64
	order   []string
}

// NewTermCounter creates an empty counter.
func NewTermCounter() *TermCounter {
	return &TermCounter{weights: make(map[string]float64)}
}

// Add normalizes the term and adds weight to it. Empty terms are ignored.
func (c *TermCounter) Add(term string, weight float64) {
	term = NormalizeTerm(term)
	if term == "" {
		return
	}
	if _, ok := c.weights[term]; !ok {
		c.order = append(c.order, term)
	}
	c.weights[term] += weight
}

// Len returns the number of distinct terms.
func (c *TermCounter) Len() int {
	return len(c.order)
}

// Weight returns the accumulated weight of a normalized term.
func (c *TermCounter) Weight(term string) float64 {
	return c.weights[term]
}

// Terms returns the distinct terms in first-seen order.
func (c *TermCounter) Terms() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Top returns up to n terms by weight, ties broken by first-seen order.
// n <= 0 returns every term.
func (c *TermCounter) Top(n int) []string {
	ranked := c.Terms()
	rank := make(map[string]int, len(ranked))
	for i, t := range ranked {
		rank[t] = i
	}
	sortStable(ranked, func(a, b string) bool {
		if c.weights[a] != c.weights[b] {
			return c.weights[a] > c.weights[b]
		}
		return rank[a] < rank[b]
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
