package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/scoutdesk/scoutdesk/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "scoutdesk_signups_total %d\n", snap.Signups)
	writeMetric(w, "scoutdesk_logins_total{outcome=\"success\"} %d\n", snap.LoginSuccess)
	writeMetric(w, "scoutdesk_logins_total{outcome=\"failure\"} %d\n", snap.LoginFailures)

	writeMetric(w, "scoutdesk_company_cache_hits_total %d\n", snap.CompanyCacheHits)
	writeMetric(w, "scoutdesk_company_cache_misses_total %d\n", snap.CompanyCacheMisses)

	writeMetric(w, "scoutdesk_enrichments_total{outcome=\"success\"} %d\n", snap.EnrichmentSuccess)
	writeMetric(w, "scoutdesk_enrichments_total{outcome=\"failure\"} %d\n", snap.EnrichmentFailures)
	writeMetric(w, "scoutdesk_enrichment_duration_seconds_count %d\n", snap.EnrichmentDurationCount)
	writeMetric(w, "scoutdesk_enrichment_duration_seconds_sum %.6f\n", float64(snap.EnrichmentDurationTotalNs)/1e9)
	writeMetric(w, "scoutdesk_scrape_duration_seconds_count %d\n", snap.ScrapeDurationCount)
	writeMetric(w, "scoutdesk_scrape_duration_seconds_sum %.6f\n", float64(snap.ScrapeDurationTotalNs)/1e9)
	writeMetric(w, "scoutdesk_generate_duration_seconds_count %d\n", snap.GenerateDurationCount)
	writeMetric(w, "scoutdesk_generate_duration_seconds_sum %.6f\n", float64(snap.GenerateDurationTotalNs)/1e9)
}

func writeMetric(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
