// Package metrics provides Prometheus metrics for the quickpost server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quickpost"

var (
	// HTTPRequestsTotal counts handled requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// MagicLinksTotal counts magic-link requests by delivery outcome.
	MagicLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "magic_links_total",
			Help:      "Total number of magic links issued",
		},
		[]string{"delivery"},
	)

	// VerificationsTotal counts verify attempts by result.
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Total number of magic link verifications",
		},
		[]string{"result"},
	)

	// TokensSwept counts expired verification tokens removed by the sweeper.
	TokensSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_tokens_swept_total",
			Help:      "Total number of expired verification tokens deleted",
		},
	)

	// FeedRequestsTotal counts upstream feed calls by outcome.
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Total number of upstream article feed requests",
		},
		[]string{"status"},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordMagicLink records the delivery outcome of a magic link: "sent", "queued" or "failed".
func RecordMagicLink(delivery string) {
	MagicLinksTotal.WithLabelValues(delivery).Inc()
}

// RecordVerification records a verify attempt: "ok", "invalid", "expired" or "unknown".
func RecordVerification(result string) {
	VerificationsTotal.WithLabelValues(result).Inc()
}

// RecordSweep adds n swept tokens.
func RecordSweep(n int64) {
	TokensSwept.Add(float64(n))
}

// RecordFeed records an upstream call outcome: "ok" or "error".
func RecordFeed(status string) {
	FeedRequestsTotal.WithLabelValues(status).Inc()
}

// Handler serves the default registry in the exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
