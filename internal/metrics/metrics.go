// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels for counters that split by result.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncSignup()
	IncLogin(outcome string) // outcome: "success" or "failure"

	// Company read metrics
	IncCompanyCacheHit()
	IncCompanyCacheMiss()

	// Enrichment pipeline metrics
	IncEnrichment(outcome string) // outcome: "success" or "failure"
	ObserveEnrichmentDuration(duration time.Duration)
	ObserveScrapeDuration(duration time.Duration)
	ObserveGenerateDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
