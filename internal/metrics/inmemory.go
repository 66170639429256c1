package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups       uint64
	LoginSuccess  uint64
	LoginFailures uint64

	CompanyCacheHits   uint64
	CompanyCacheMisses uint64

	EnrichmentSuccess  uint64
	EnrichmentFailures uint64

	EnrichmentDurationCount   uint64
	EnrichmentDurationTotalNs int64
	ScrapeDurationCount       uint64
	ScrapeDurationTotalNs     int64
	GenerateDurationCount     uint64
	GenerateDurationTotalNs   int64
}

// InMemoryRecorder stores metrics in memory. It backs /metrics and tests.
type InMemoryRecorder struct {
	signups       uint64
	loginSuccess  uint64
	loginFailures uint64

	companyCacheHits   uint64
	companyCacheMisses uint64

	enrichmentSuccess  uint64
	enrichmentFailures uint64

	enrichmentDurationCount   uint64
	enrichmentDurationTotalNs int64
	scrapeDurationCount       uint64
	scrapeDurationTotalNs     int64
	generateDurationCount     uint64
	generateDurationTotalNs   int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Signups:                   atomic.LoadUint64(&m.signups),
		LoginSuccess:              atomic.LoadUint64(&m.loginSuccess),
		LoginFailures:             atomic.LoadUint64(&m.loginFailures),
		CompanyCacheHits:          atomic.LoadUint64(&m.companyCacheHits),
		CompanyCacheMisses:        atomic.LoadUint64(&m.companyCacheMisses),
		EnrichmentSuccess:         atomic.LoadUint64(&m.enrichmentSuccess),
		EnrichmentFailures:        atomic.LoadUint64(&m.enrichmentFailures),
		EnrichmentDurationCount:   atomic.LoadUint64(&m.enrichmentDurationCount),
		EnrichmentDurationTotalNs: atomic.LoadInt64(&m.enrichmentDurationTotalNs),
		ScrapeDurationCount:       atomic.LoadUint64(&m.scrapeDurationCount),
		ScrapeDurationTotalNs:     atomic.LoadInt64(&m.scrapeDurationTotalNs),
		GenerateDurationCount:     atomic.LoadUint64(&m.generateDurationCount),
		GenerateDurationTotalNs:   atomic.LoadInt64(&m.generateDurationTotalNs),
	}
}

// IncSignup increments the signup counter.
func (m *InMemoryRecorder) IncSignup() {
	atomic.AddUint64(&m.signups, 1)
}

// IncLogin increments the login counter for the outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	if outcome == OutcomeSuccess {
		atomic.AddUint64(&m.loginSuccess, 1)
		return
	}
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncCompanyCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCompanyCacheHit() {
	atomic.AddUint64(&m.companyCacheHits, 1)
}

// IncCompanyCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCompanyCacheMiss() {
	atomic.AddUint64(&m.companyCacheMisses, 1)
}

// IncEnrichment increments the enrichment counter for the outcome.
func (m *InMemoryRecorder) IncEnrichment(outcome string) {
	if outcome == OutcomeSuccess {
		atomic.AddUint64(&m.enrichmentSuccess, 1)
		return
	}
	atomic.AddUint64(&m.enrichmentFailures, 1)
}

// ObserveEnrichmentDuration records a full enrichment run.
func (m *InMemoryRecorder) ObserveEnrichmentDuration(duration time.Duration) {
	atomic.AddUint64(&m.enrichmentDurationCount, 1)
	atomic.AddInt64(&m.enrichmentDurationTotalNs, duration.Nanoseconds())
}

// ObserveScrapeDuration records a reader call.
func (m *InMemoryRecorder) ObserveScrapeDuration(duration time.Duration) {
	atomic.AddUint64(&m.scrapeDurationCount, 1)
	atomic.AddInt64(&m.scrapeDurationTotalNs, duration.Nanoseconds())
}

// ObserveGenerateDuration records a model call.
func (m *InMemoryRecorder) ObserveGenerateDuration(duration time.Duration) {
	atomic.AddUint64(&m.generateDurationCount, 1)
	atomic.AddInt64(&m.generateDurationTotalNs, duration.Nanoseconds())
}
