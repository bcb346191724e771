package mood

import "fmt"

// NoHistoryNarrative is the overview used when there are no records.
const NoHistoryNarrative = "No mood history available."

// Narrate renders a one-sentence overview of an already computed trend.
func Narrate(trend Trend, count int) string {
	switch trend.Direction {
	case TrendImproving, TrendDeclining:
		return fmt.Sprintf("Mood has been %s %s over the last %d %s (%.2f points per entry).",
			adverb(trend.Magnitude), trend.Direction, count, plural(count), trend.Magnitude)
	case TrendVolatile:
		return fmt.Sprintf("Mood has been volatile, swinging between highs and lows over the last %d %s.",
			count, plural(count))
	default:
		return fmt.Sprintf("Mood has remained stable over the last %d %s.", count, plural(count))
	}
}

// ShortNarrative renders the trend as a single clause.
func ShortNarrative(trend Trend) string {
	if trend.Direction == "" {
		return "Mood stable."
	}
	return fmt.Sprintf("Mood %s.", trend.Direction)
}

// InsufficientNarrative states that too few records exist to narrate.
func InsufficientNarrative(count, needed int) string {
	return fmt.Sprintf("Insufficient data for a mood trajectory: %d of %d records.", count, needed)
}

func adverb(magnitude float64) string {
	switch {
	case magnitude < 0.5:
		return "gradually"
	case magnitude < 1.0:
		return "steadily"
	default:
		return "sharply"
	}
}

func plural(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}
