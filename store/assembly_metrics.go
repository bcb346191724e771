package store

import "time"

// AssemblyMetrics holds hourly aggregated context assembly metrics for one
// conversation goal.
type AssemblyMetrics struct {
	ID           int64
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

// UpsertAssemblyMetrics adds counters to the (hour, goal) row. Percentiles
// replace the stored values.
type UpsertAssemblyMetrics struct {
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

type FindAssemblyMetrics struct {
	Goal      *string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
}

type DeleteAssemblyMetrics struct {
	BeforeTime *time.Time // Delete rows older than this time
}
