// Package mood summarizes a participant's current emotional state, the
// direction of their mood over time, and a short trajectory narrative.
package mood

import (
	"math"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

// TrendDirection classifies the recent mood-score sequence.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
	TrendVolatile  TrendDirection = "volatile"
)

// Config tunes the tokenizer.
type Config struct {
	WindowSize              int     // Records in the current-mood window (default: 5)
	MaxDescriptors          int     // Descriptors reported for the current mood (default: 5)
	TrendWindow             int     // Trailing records used for the trend (default: 10)
	ImprovingThreshold      float64 // Slope above which the trend improves (default: 0.3)
	DecliningThreshold      float64 // Slope below which the trend declines (default: -0.3)
	VolatilityThreshold     float64 // Sign-change rate above which the trend is volatile (default: 0.5)
	MinRecordsForTrajectory int     // Records needed before narrating (default: 3)
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize:              5,
		MaxDescriptors:          5,
		TrendWindow:             10,
		ImprovingThreshold:      0.3,
		DecliningThreshold:      -0.3,
		VolatilityThreshold:     0.5,
		MinRecordsForTrajectory: 3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	if c.MaxDescriptors <= 0 {
		c.MaxDescriptors = d.MaxDescriptors
	}
	if c.TrendWindow < 2 {
		c.TrendWindow = d.TrendWindow
	}
	if c.ImprovingThreshold <= 0 {
		c.ImprovingThreshold = d.ImprovingThreshold
	}
	if c.DecliningThreshold >= 0 {
		c.DecliningThreshold = d.DecliningThreshold
	}
	if c.VolatilityThreshold <= 0 {
		c.VolatilityThreshold = d.VolatilityThreshold
	}
	if c.MinRecordsForTrajectory <= 0 {
		c.MinRecordsForTrajectory = d.MinRecordsForTrajectory
	}
	return c
}

// CurrentMood is the confidence-weighted mood over the recent window.
type CurrentMood struct {
	Score       float64  `json:"score"`
	Descriptors []string `json:"descriptors"`
	Confidence  float64  `json:"confidence"`
}

// Trend is the direction and per-record slope of the mood sequence.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Magnitude float64        `json:"magnitude"`
}

// Context is the tokenizer output.
type Context struct {
	CurrentMood        CurrentMood       `json:"currentMood"`
	MoodTrend          Trend             `json:"moodTrend"`
	RecentMoodTags     []string          `json:"recentMoodTags"`
	TrajectoryOverview string            `json:"trajectoryOverview"`
	Status             memory.DataStatus `json:"status"`
}

// Empty returns the neutral context used when there is no mood history.
func Empty() *Context {
	return &Context{
		CurrentMood: CurrentMood{
			Score:       memory.NeutralMoodScore,
			Descriptors: []string{"neutral"},
			Confidence:  0,
		},
		MoodTrend:          Trend{Direction: TrendStable},
		RecentMoodTags:     []string{},
		TrajectoryOverview: NoHistoryNarrative,
		Status:             memory.StatusEmpty,
	}
}

// Tokenizer turns memory records into a mood Context. It holds no mutable
// state and is safe for concurrent use.
type Tokenizer struct {
	cfg Config
}

// NewTokenizer creates a tokenizer; zero config fields take defaults.
func NewTokenizer(cfg Config) *Tokenizer {
	return &Tokenizer{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (t *Tokenizer) Config() Config {
	return t.cfg
}

// Tokenize summarizes the records. Input order does not matter; invalid
// records are skipped.
func (t *Tokenizer) Tokenize(records []memory.Record) *Context {
	valid, _ := memory.ValidRecords(records)
	if len(valid) == 0 {
		return Empty()
	}

	recent := memory.SortByRecency(valid)
	window := recent
	if len(window) > t.cfg.WindowSize {
		window = window[:t.cfg.WindowSize]
	}

	trendRecords := recent
	if len(trendRecords) > t.cfg.TrendWindow {
		trendRecords = trendRecords[:t.cfg.TrendWindow]
	}
	scores := make([]float64, len(trendRecords))
	for i := range trendRecords {
		// oldest first
		scores[len(trendRecords)-1-i] = trendRecords[i].MoodScore()
	}
	trend := AnalyzeTrend(scores, t.cfg)

	out := &Context{
		CurrentMood:    t.currentMood(window),
		MoodTrend:      trend,
		RecentMoodTags: recentTags(window),
		Status:         memory.StatusOK,
	}
	if len(valid) < t.cfg.MinRecordsForTrajectory {
		out.TrajectoryOverview = InsufficientNarrative(len(valid), t.cfg.MinRecordsForTrajectory)
		out.Status = memory.StatusInsufficient
	} else {
		out.TrajectoryOverview = Narrate(trend, len(trendRecords))
	}
	return out
}

func (t *Tokenizer) currentMood(window []memory.Record) CurrentMood {
	var weighted, weights, plain, confidence float64
	descriptors := memory.NewTermCounter()
	for i := range window {
		score, conf := window[i].MoodScore(), window[i].MoodConfidence()
		weighted += score * conf
		weights += conf
		plain += score
		confidence += conf
		for _, d := range window[i].MoodDescriptors() {
			descriptors.Add(d, 1)
		}
	}

	n := float64(len(window))
	score := plain / n
	if weights > 0 {
		score = weighted / weights
	}

	top := descriptors.Top(t.cfg.MaxDescriptors)
	if len(top) == 0 {
		top = []string{"neutral"}
	}
	return CurrentMood{
		Score:       round2(score),
		Descriptors: top,
		Confidence:  round2(confidence / n),
	}
}

// recentTags unions themes then descriptors per record, most recent first.
func recentTags(window []memory.Record) []string {
	tags := memory.NewTermCounter()
	for i := range window {
		for _, theme := range window[i].Themes() {
			tags.Add(theme, 1)
		}
		for _, d := range window[i].MoodDescriptors() {
			tags.Add(d, 1)
		}
	}
	return tags.Terms()
}

// AnalyzeTrend classifies a mood-score sequence ordered oldest to newest.
// Only the trailing cfg.TrendWindow scores are considered.
//
// Volatility is checked first: the share of sign changes between
// consecutive non-zero deltas must exceed VolatilityThreshold. Otherwise a
// strictly monotonic run of at least three scores, or a least-squares slope
// past a threshold, decides improving or declining.
func AnalyzeTrend(scores []float64, cfg Config) Trend {
	cfg = cfg.withDefaults()
	if len(scores) > cfg.TrendWindow {
		scores = scores[len(scores)-cfg.TrendWindow:]
	}
	if len(scores) < 2 {
		return Trend{Direction: TrendStable}
	}

	slope := leastSquaresSlope(scores)
	trend := Trend{Magnitude: round2(math.Abs(slope))}

	switch {
	case signChangeRate(scores) > cfg.VolatilityThreshold:
		trend.Direction = TrendVolatile
	case slope > cfg.ImprovingThreshold:
		trend.Direction = TrendImproving
	case slope < cfg.DecliningThreshold:
		trend.Direction = TrendDeclining
	default:
		trend.Direction = monotonicDirection(scores)
	}
	return trend
}

func leastSquaresSlope(ys []float64) float64 {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// signChangeRate returns the fraction of adjacent non-zero delta pairs whose
// signs differ. Fewer than two non-zero deltas yield 0.
func signChangeRate(ys []float64) float64 {
	var signs []int
	for i := 1; i < len(ys); i++ {
		switch d := ys[i] - ys[i-1]; {
		case d > 0:
			signs = append(signs, 1)
		case d < 0:
			signs = append(signs, -1)
		}
	}
	if len(signs) < 2 {
		return 0
	}
	changes := 0
	for i := 1; i < len(signs); i++ {
		if signs[i] != signs[i-1] {
			changes++
		}
	}
	return float64(changes) / float64(len(signs)-1)
}

func monotonicDirection(ys []float64) TrendDirection {
	if len(ys) < 3 {
		return TrendStable
	}
	up, down := true, true
	for i := 1; i < len(ys); i++ {
		if ys[i] <= ys[i-1] {
			up = false
		}
		if ys[i] >= ys[i-1] {
			down = false
		}
	}
	switch {
	case up:
		return TrendImproving
	case down:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
