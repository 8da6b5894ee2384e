// Package metrics exposes Prometheus collectors for a fetch run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the cover fetcher. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	CoversTotal     *prometheus.CounterVec
	RateLimited     prometheus.Counter
	PagesTotal      *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "igdbcovers_requests_total",
			Help: "Total HTTP requests issued, by endpoint.",
		},
		[]string{"endpoint"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "igdbcovers_request_duration_seconds",
			Help:    "Latency of catalog, token and image requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	covers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "igdbcovers_covers_total",
			Help: "Covers processed, by outcome (hit, downloaded, failed).",
		},
		[]string{"outcome"},
	)
	rateLimited := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "igdbcovers_rate_limited_total",
			Help: "Catalog requests rejected with HTTP 429.",
		},
	)
	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "igdbcovers_pages_total",
			Help: "Catalog pages processed, by platform.",
		},
		[]string{"platform"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "igdbcovers_errors_total",
			Help: "Errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, covers, rateLimited, pages, errorsTotal)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		CoversTotal:     covers,
		RateLimited:     rateLimited,
		PagesTotal:      pages,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the requests counter for an endpoint.
func (m *Metrics) IncRequest(endpoint string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint).Inc()
}

// ObserveDuration records a request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncCover counts one cover outcome.
func (m *Metrics) IncCover(outcome string) {
	if m == nil {
		return
	}
	m.CoversTotal.WithLabelValues(outcome).Inc()
}

// IncRateLimited counts a 429 response.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// IncPage counts a processed page for platform.
func (m *Metrics) IncPage(platform string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(platform).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
