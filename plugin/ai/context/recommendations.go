package context

import (
	"sort"

	"github.com/hrygo/emocontext/plugin/ai/memory"
	"github.com/hrygo/emocontext/plugin/ai/mood"
	"github.com/hrygo/emocontext/plugin/ai/timeline"
)

// Mood score bounds for recommendation buckets.
const (
	lowMoodScore  = 4.0
	highMoodScore = 7.0
)

// Timeline signal thresholds, counted over the newest deltaSignalEvents
// events that carry a mood delta.
const (
	deltaSignalEvents = 5
	declineRun        = 2 // declines that read as low mood
	swingRun          = 2 // up/down reversals that read as oscillation
)

// DefaultRecommendations is the balanced pair used without mood signal.
func DefaultRecommendations() Recommendations {
	return Recommendations{
		Tone:           "balanced",
		Approach:       "supportive",
		Avoid:          []string{},
		ResponseLength: LengthModerate,
	}
}

// Recommend derives recommendations from the merged mood and timeline
// signals. Low mood, or a run of declines on the timeline, asks for an
// empathetic approach; high mood for a celebratory one. A volatile trend or
// repeated up/down swings between events shortens responses and avoids
// complex topics.
func Recommend(moodCtx *mood.Context, tl *timeline.Timeline) Recommendations {
	rec := DefaultRecommendations()
	hasMood := moodCtx != nil && moodCtx.Status != memory.StatusEmpty
	hasTimeline := tl != nil && tl.Status != memory.StatusEmpty
	if !hasMood && !hasTimeline {
		return rec
	}

	declines, swings := deltaSignals(tl)
	low := declines >= declineRun
	high := false
	if hasMood {
		score := moodCtx.CurrentMood.Score
		low = low || score <= lowMoodScore
		high = score >= highMoodScore
	}

	switch {
	case low:
		rec.Tone = "supportive"
		rec.Approach = "empathetic"
		rec.Avoid = appendUnique(rec.Avoid, "criticism", "complex topics")
	case high:
		rec.Tone = "positive"
		rec.Approach = "celebratory"
	}

	volatile := hasMood && moodCtx.MoodTrend.Direction == mood.TrendVolatile
	if volatile || swings >= swingRun {
		rec.ResponseLength = LengthBrief
		rec.Avoid = appendUnique(rec.Avoid, "complex topics")
	}
	return rec
}

// deltaSignals counts declines and direction reversals among the newest
// events carrying a mood delta. Recent events and key moments are merged by
// record id.
func deltaSignals(tl *timeline.Timeline) (declines, swings int) {
	if tl == nil {
		return 0, 0
	}
	seen := make(map[string]struct{}, len(tl.RecentEvents)+len(tl.KeyMoments))
	events := make([]timeline.Event, 0, len(tl.RecentEvents)+len(tl.KeyMoments))
	add := func(e timeline.Event) {
		if e.DeltaType == "" || e.DeltaType == memory.DeltaPlateau {
			return
		}
		if _, ok := seen[e.RecordID]; ok {
			return
		}
		seen[e.RecordID] = struct{}{}
		events = append(events, e)
	}
	for _, e := range tl.RecentEvents {
		add(e)
	}
	for _, m := range tl.KeyMoments {
		add(m.Event)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	if len(events) > deltaSignalEvents {
		events = events[len(events)-deltaSignalEvents:]
	}

	prevUp := false
	for i, e := range events {
		up := e.DeltaType != memory.DeltaDecline
		if !up {
			declines++
		}
		if i > 0 && up != prevUp {
			swings++
		}
		prevUp = up
	}
	return declines, swings
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
