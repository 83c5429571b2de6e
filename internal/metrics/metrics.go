// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_total",
			Help: "Total number of completed dispatches, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	crawlerRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_retries_total",
			Help: "Total number of items resubmitted after a transient failure.",
		},
	)

	crawlerInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crawler_in_flight_tasks",
			Help: "Number of fetch tasks currently outstanding.",
		},
	)

	crawlerRateLimitDelaySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_rate_limit_delay_seconds",
			Help:    "Histogram of dispatch delays imposed by the rate limiter.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	crawlerFetchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_fetch_duration_seconds",
			Help:    "Histogram of full fetch attempt latencies.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
		},
	)
)

// Outcome labels for PageProcessed.
const (
	OutcomeSuccess   = "success"
	OutcomePostponed = "postponed"
	OutcomeFailed    = "failed"
)

// PageProcessed counts one completed dispatch with the given outcome label.
func PageProcessed(outcome string) {
	crawlerPagesTotal.WithLabelValues(outcome).Inc()
}

// RetryScheduled counts one item resubmission.
func RetryScheduled() {
	crawlerRetriesTotal.Inc()
}

// SetInFlight records the current in-flight task count.
func SetInFlight(n int) {
	crawlerInFlight.Set(float64(n))
}

// ObserveRateLimitDelay records the wait imposed before a dispatch.
func ObserveRateLimitDelay(seconds float64) {
	crawlerRateLimitDelaySeconds.Observe(seconds)
}

// ObserveFetchDuration records the wall-clock time of one fetch attempt.
func ObserveFetchDuration(seconds float64) {
	crawlerFetchDurationSeconds.Observe(seconds)
}

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
