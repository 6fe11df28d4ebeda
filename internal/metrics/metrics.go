// Package metrics exposes crawl counters in the Prometheus format.
//
// Each Metrics value owns its registry, so several crawls (or parallel tests)
// never collide on the process-wide default registry. Every method is safe to
// call on a nil *Metrics, which makes instrumentation optional for callers.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons reported by Skipped.
const (
	ReasonDepth    = "depth"
	ReasonDeadline = "deadline"
	ReasonIgnored  = "ignored"
	ReasonVisited  = "visited"
	// ReasonCancelled is used when the crawl context was cancelled before
	// its own deadline passed, for example by an interrupt.
	ReasonCancelled = "cancelled"
)

// Metrics groups the crawl collectors.
type Metrics struct {
	registry *prometheus.Registry

	pagesFetched   prometheus.Counter
	fetchErrors    prometheus.Counter
	claimConflicts prometheus.Counter
	skipped        *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
}

// New creates and registers the crawl collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordcrawl_pages_fetched_total",
			Help: "Total number of pages successfully parsed",
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordcrawl_fetch_errors_total",
			Help: "Total number of pages whose fetch or parse failed",
		}),
		claimConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordcrawl_claim_conflicts_total",
			Help: "Total number of tasks that lost the race to claim a URL",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordcrawl_skipped_total",
			Help: "Total number of tasks that returned without fetching, by reason",
		}, []string{"reason"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wordcrawl_fetch_duration_seconds",
			Help:    "Time spent fetching and parsing one page",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.pagesFetched,
		m.fetchErrors,
		m.claimConflicts,
		m.skipped,
		m.fetchDuration,
	)
	return m
}

// PageFetched records a successful parse that took d.
func (m *Metrics) PageFetched(d time.Duration) {
	if m == nil {
		return
	}
	m.pagesFetched.Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// FetchFailed records a failed fetch or parse.
func (m *Metrics) FetchFailed() {
	if m == nil {
		return
	}
	m.fetchErrors.Inc()
}

// ClaimConflict records a lost claim race.
func (m *Metrics) ClaimConflict() {
	if m == nil {
		return
	}
	m.claimConflicts.Inc()
}

// Skipped records a task that returned early for reason.
func (m *Metrics) Skipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
