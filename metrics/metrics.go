// Package metrics provides Prometheus metrics for the news API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "finnews"

var (
	// HTTPRequestsTotal counts handled requests by route template, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ClapsTotal counts successful clap increments.
	ClapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claps_total",
			Help:      "Total number of claps recorded",
		},
	)

	// FeedItemsImported counts articles created by the feed importer, by outcome.
	FeedItemsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_items_imported_total",
			Help:      "Feed items processed by the importer",
		},
		[]string{"status"},
	)

	// ErrorsTotal counts internal errors by operation.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of internal errors",
		},
		[]string{"operation"},
	)
)

// RecordRequest records one handled HTTP request.
func RecordRequest(route, method, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(seconds)
}

// RecordError records an internal error for operation.
func RecordError(operation string) {
	ErrorsTotal.WithLabelValues(operation).Inc()
}
