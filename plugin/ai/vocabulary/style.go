package vocabulary

import (
	"strings"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

const maxTones = 5

// Indicator phrases are matched against lower-cased record content.
var (
	metaphorIndicators = []string{
		"like a", "as if", "as though", "feels like", "felt like", "rollercoaster",
		"storm", "weight on", "light at the end", "drowning", "walking on eggshells",
	}
	analyticalIndicators = []string{
		"because", "therefore", "however", "which means", "as a result",
		"consequently", "on the other hand", "i think", "i realized", "in fact",
	}
	emotionalIndicators = []string{
		"feel", "felt", "love", "hate", "scared", "afraid", "happy", "sad",
		"angry", "excited", "hurt", "overwhelmed", "lonely", "grateful",
	}
	supportPhrases = []string{
		"here for you", "you've got this", "proud of you", "it's okay",
		"that sounds hard", "i understand", "take your time", "you're not alone",
		"thank you for sharing", "i believe in you",
	}
)

// Tie order when two styles get the same number of votes.
var expressivenessOrder = []Expressiveness{ExpressDirect, ExpressMetaphorical, ExpressAnalytical, ExpressEmotional}

func communicationStyle(records []memory.Record) CommunicationStyle {
	tones := memory.NewTermCounter()
	votes := make(map[Expressiveness]int, len(expressivenessOrder))
	support := memory.NewTermCounter()
	hasSupportPattern := false

	for i := range records {
		r := &records[i]
		for _, tone := range recordTones(r) {
			tones.Add(tone, 1)
		}

		content := strings.ToLower(r.Content)
		votes[classifyExpressiveness(content)]++
		for _, phrase := range supportPhrases {
			if strings.Contains(content, phrase) {
				support.Add(phrase, 1)
			}
		}
		if r.HasSupportPattern() {
			hasSupportPattern = true
		}
	}
	if hasSupportPattern {
		support.Add("encouragement", 1)
		support.Add("validation", 1)
	}

	best := ExpressDirect
	for _, style := range expressivenessOrder {
		if votes[style] > votes[best] {
			best = style
		}
	}

	tone := tones.Top(maxTones)
	if len(tone) == 0 {
		tone = []string{"neutral"}
	}
	return CommunicationStyle{
		Tone:            tone,
		Expressiveness:  best,
		SupportLanguage: support.Terms(),
	}
}

func recordTones(r *memory.Record) []string {
	var tones []string
	switch score := r.MoodScore(); {
	case score >= 7:
		tones = append(tones, "positive", "upbeat")
	case score <= 3:
		tones = append(tones, "concerned", "serious")
	default:
		tones = append(tones, "balanced")
	}
	if r.SignificanceCategory() == memory.SignificanceHigh {
		tones = append(tones, "important", "meaningful")
	}
	if r.HasSupportPattern() {
		tones = append(tones, "supportive", "caring")
	}
	return tones
}

// classifyExpressiveness picks the first style whose indicators match, in
// the precedence metaphorical, analytical, emotional, then direct.
func classifyExpressiveness(content string) Expressiveness {
	switch {
	case containsAny(content, metaphorIndicators):
		return ExpressMetaphorical
	case containsAny(content, analyticalIndicators):
		return ExpressAnalytical
	case containsAny(content, emotionalIndicators):
		return ExpressEmotional
	default:
		return ExpressDirect
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
