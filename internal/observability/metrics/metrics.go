// Package metrics defines the Prometheus instruments for the digest
// engine and the upstream news client, registered on the default
// registry and exposed via the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	digestRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_runs_total",
		Help: "Number of digest sweeps executed, by cadence.",
	}, []string{"frequency"})

	digestEmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_emails_sent_total",
		Help: "Number of digest emails successfully sent, by cadence.",
	}, []string{"frequency"})

	digestUserErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_user_errors_total",
		Help: "Number of per-user digest failures captured during sweeps, by cadence.",
	}, []string{"frequency"})

	digestRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "digest_run_duration_seconds",
		Help:    "Duration of one full digest sweep.",
		Buckets: prometheus.DefBuckets,
	}, []string{"frequency"})

	newsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsapi_requests_total",
		Help: "Number of upstream news provider requests, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	newsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsapi_request_duration_seconds",
		Help:    "Latency of upstream news provider requests.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	windowRounds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "news_window_upstream_rounds",
		Help:    "Upstream pages fetched to assemble one logical window.",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 13},
	})
)

// RecordDigestRun records the outcome of one digest sweep.
func RecordDigestRun(frequency string, sent, userErrors int, duration time.Duration) {
	digestRunsTotal.WithLabelValues(frequency).Inc()
	digestEmailsSentTotal.WithLabelValues(frequency).Add(float64(sent))
	digestUserErrorsTotal.WithLabelValues(frequency).Add(float64(userErrors))
	digestRunDuration.WithLabelValues(frequency).Observe(duration.Seconds())
}

// RecordNewsRequest records one upstream provider call.
func RecordNewsRequest(endpoint, outcome string, duration time.Duration) {
	newsRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	newsRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordWindowRounds records how many upstream pages one window needed.
func RecordWindowRounds(rounds int) {
	windowRounds.Observe(float64(rounds))
}
