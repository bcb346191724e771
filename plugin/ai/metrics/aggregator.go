package metrics

import (
	"sort"
	"sync"
	"time"
)

// Aggregator aggregates metrics in memory before persisting to database.
type Aggregator struct {
	mu  sync.RWMutex
	now func() time.Time

	// key = "hourBucket|goal"
	assemblies map[string]*assemblyBucket

	// key = "hourBucket|stage"
	stages map[string]*stageBucket

	optimizations map[string]int64
}

type assemblyBucket struct {
	hourBucket   time.Time
	goal         string
	requestCount int64
	successCount int64
	cacheHits    int64
	tokenSum     int64
	latencies    []int64 // in milliseconds
}

type stageBucket struct {
	hourBucket time.Time
	stage      string
	callCount  int64
	latencySum int64 // in milliseconds
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		now:           time.Now,
		assemblies:    make(map[string]*assemblyBucket),
		stages:        make(map[string]*stageBucket),
		optimizations: make(map[string]int64),
	}
}

func (a *Aggregator) assemblyBucketFor(goal string) *assemblyBucket {
	hourBucket := truncateToHour(a.now())
	key := makeKey(hourBucket, goal)

	bucket, exists := a.assemblies[key]
	if !exists {
		bucket = &assemblyBucket{
			hourBucket: hourBucket,
			goal:       goal,
			latencies:  make([]int64, 0, 100),
		}
		a.assemblies[key] = bucket
	}
	return bucket
}

// RecordAssembly records a single assembly request.
func (a *Aggregator) RecordAssembly(goal string, latency time.Duration, tokens int, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	bucket := a.assemblyBucketFor(goal)
	bucket.requestCount++
	if success {
		bucket.successCount++
	}
	bucket.tokenSum += int64(tokens)
	bucket.latencies = append(bucket.latencies, latency.Milliseconds())
}

// RecordCacheLookup counts a cache hit against the goal's bucket. Misses
// are implied by the request count.
func (a *Aggregator) RecordCacheLookup(goal string, hit bool) {
	if !hit {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assemblyBucketFor(goal).cacheHits++
}

// RecordStage records a single stage execution.
func (a *Aggregator) RecordStage(stage string, latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hourBucket := truncateToHour(a.now())
	key := makeKey(hourBucket, stage)

	bucket, exists := a.stages[key]
	if !exists {
		bucket = &stageBucket{hourBucket: hourBucket, stage: stage}
		a.stages[key] = bucket
	}
	bucket.callCount++
	bucket.latencySum += latency.Milliseconds()
}

// RecordOptimization counts an applied optimization.
func (a *Aggregator) RecordOptimization(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.optimizations[name]++
}

// AssemblySnapshot represents a snapshot of assembly metrics for persistence.
type AssemblySnapshot struct {
	HourBucket   time.Time
	Goal         string
	RequestCount int64
	SuccessCount int64
	CacheHits    int64
	TokenSum     int64
	LatencySumMs int64
	LatencyP50Ms int32
	LatencyP95Ms int32
}

// FlushAssemblyMetrics returns and clears all assembly buckets for hours
// before beforeHour. Stage buckets of the same hours are dropped.
func (a *Aggregator) FlushAssemblyMetrics(beforeHour time.Time) []*AssemblySnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	var snapshots []*AssemblySnapshot
	for key, bucket := range a.assemblies {
		if !bucket.hourBucket.Before(beforeHour) {
			continue
		}
		snapshots = append(snapshots, &AssemblySnapshot{
			HourBucket:   bucket.hourBucket,
			Goal:         bucket.goal,
			RequestCount: bucket.requestCount,
			SuccessCount: bucket.successCount,
			CacheHits:    bucket.cacheHits,
			TokenSum:     bucket.tokenSum,
			LatencySumMs: sumLatencies(bucket.latencies),
			LatencyP50Ms: int32(percentile(bucket.latencies, 50)),
			LatencyP95Ms: int32(percentile(bucket.latencies, 95)),
		})
		delete(a.assemblies, key)
	}
	for key, bucket := range a.stages {
		if bucket.hourBucket.Before(beforeHour) {
			delete(a.stages, key)
		}
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].HourBucket.Equal(snapshots[j].HourBucket) {
			return snapshots[i].HourBucket.Before(snapshots[j].HourBucket)
		}
		return snapshots[i].Goal < snapshots[j].Goal
	})
	return snapshots
}

// GetCurrentStats returns aggregated stats held in memory.
func (a *Aggregator) GetCurrentStats() *PipelineMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := newPipelineMetrics()
	totals, allLatencies := a.goalTotalsLocked()
	stats.fill(totals)

	stageSums := make(map[string][2]int64)
	for _, bucket := range a.stages {
		s := stageSums[bucket.stage]
		s[0] += bucket.callCount
		s[1] += bucket.latencySum
		stageSums[bucket.stage] = s
	}
	for stage, s := range stageSums {
		stat := &StageStat{Count: s[0]}
		if s[0] > 0 {
			stat.AvgLatency = time.Duration(s[1]/s[0]) * time.Millisecond
		}
		stats.StageStats[stage] = stat
	}

	for name, count := range a.optimizations {
		stats.Optimizations[name] = count
	}

	stats.LatencyP50 = time.Duration(percentile(allLatencies, 50)) * time.Millisecond
	stats.LatencyP95 = time.Duration(percentile(allLatencies, 95)) * time.Millisecond
	return stats
}

// rawGoalTotals returns a copy of the raw per-goal counters held in memory.
func (a *Aggregator) rawGoalTotals() map[string]*goalTotals {
	a.mu.RLock()
	defer a.mu.RUnlock()
	totals, _ := a.goalTotalsLocked()
	return totals
}

func (a *Aggregator) goalTotalsLocked() (map[string]*goalTotals, []int64) {
	totals := make(map[string]*goalTotals)
	allLatencies := make([]int64, 0)
	for _, bucket := range a.assemblies {
		t, ok := totals[bucket.goal]
		if !ok {
			t = &goalTotals{}
			totals[bucket.goal] = t
		}
		t.add(goalTotals{
			requests:   bucket.requestCount,
			success:    bucket.successCount,
			cacheHits:  bucket.cacheHits,
			tokens:     bucket.tokenSum,
			latencySum: sumLatencies(bucket.latencies),
		})
		allLatencies = append(allLatencies, bucket.latencies...)
	}
	return totals, allLatencies
}

// Helper functions

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func makeKey(hourBucket time.Time, name string) string {
	return hourBucket.Format(time.RFC3339) + "|" + name
}

func sumLatencies(latencies []int64) int64 {
	var sum int64
	for _, l := range latencies {
		sum += l
	}
	return sum
}

func percentile(latencies []int64, p int) int64 {
	if len(latencies) == 0 {
		return 0
	}

	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
