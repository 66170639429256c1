package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignup is a no-op.
func (n *NoopRecorder) IncSignup() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(outcome string) {}

// IncCompanyCacheHit is a no-op.
func (n *NoopRecorder) IncCompanyCacheHit() {}

// IncCompanyCacheMiss is a no-op.
func (n *NoopRecorder) IncCompanyCacheMiss() {}

// IncEnrichment is a no-op.
func (n *NoopRecorder) IncEnrichment(outcome string) {}

// ObserveEnrichmentDuration is a no-op.
func (n *NoopRecorder) ObserveEnrichmentDuration(duration time.Duration) {}

// ObserveScrapeDuration is a no-op.
func (n *NoopRecorder) ObserveScrapeDuration(duration time.Duration) {}

// ObserveGenerateDuration is a no-op.
func (n *NoopRecorder) ObserveGenerateDuration(duration time.Duration) {}
