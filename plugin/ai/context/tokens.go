package context

import (
	"encoding/json"
)

// EstimateTokens estimates the token count for a string.
// Uses heuristic: CJK and other non-ASCII runes count as ~2 tokens, ASCII as
// ~0.25 tokens per char.
func EstimateTokens(content string) int {
	if len(content) == 0 {
		return 0
	}

	wideCount := 0
	asciiCount := 0

	for _, r := range content {
		if r < 128 {
			asciiCount++
		} else {
			wideCount++
		}
	}

	tokens := wideCount*2 + asciiCount/4
	if tokens == 0 {
		tokens = 1
	}

	return tokens
}

// EstimateBundleTokens estimates the tokens of the serialized bundle. The
// optimization block is left out so the estimate does not depend on itself.
func EstimateBundleTokens(b *Bundle) int {
	if b == nil {
		return 0
	}
	shadow := *b
	shadow.Optimization = Optimization{}
	data, err := json.Marshal(&shadow)
	if err != nil {
		return 0
	}
	return EstimateTokens(string(data))
}
