package context

import (
	"strings"

	"github.com/hrygo/emocontext/internal/errors"
)

// DefaultMaxTokens is the token ceiling used when none is configured.
const DefaultMaxTokens = 2000

// DetailLevel scales the token budget of one assembly.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailStandard DetailLevel = "standard"
	DetailDetailed DetailLevel = "detailed"
)

// ParseDetailLevel parses a detail level. The empty string is standard.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch level := DetailLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case "", DetailStandard:
		return DetailStandard, nil
	case DetailBrief, DetailDetailed:
		return level, nil
	}
	return "", errors.InvalidArgument("unknown detail level: " + s).WithContext("detail", s)
}

// scale returns the budget multiplier of the level.
func (l DetailLevel) scale() float64 {
	switch l {
	case DetailBrief:
		return 0.5
	case DetailDetailed:
		return 2
	default:
		return 1
	}
}

// normalized maps unknown levels to standard.
func (l DetailLevel) normalized() DetailLevel {
	switch l {
	case DetailBrief, DetailDetailed:
		return l
	default:
		return DetailStandard
	}
}

// BudgetFor returns the token ceiling for a request: maxTokens (or the
// default when not positive) scaled by the detail level, never below 1.
func BudgetFor(maxTokens int, level DetailLevel) int {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	budget := int(float64(maxTokens) * level.normalized().scale())
	if budget < 1 {
		budget = 1
	}
	return budget
}
