// Package metrics provides the Prometheus collectors for the keystats server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "keystats"

var (
	// HTTPRequestTotal counts requests by method, route and status
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, path, and status.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDurationSeconds is the request latency histogram
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms to ~9.3s
		},
		[]string{"method", "path"},
	)

	// RateLimitedTotal counts requests rejected with 429
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Total number of requests rejected by the per-client rate limiter.",
		},
	)

	// CacheOperationsTotal counts cache layer outcomes by operation and result
	// (hit, miss, stored, error, disabled)
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache layer operations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// AnalyzerComputationsTotal counts results computed from the store, i.e.
	// cache misses that reached the database
	AnalyzerComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyzer_computations_total",
			Help:      "Analyzer results computed from the record store by operation.",
		},
		[]string{"operation"},
	)

	// AnalyzerDurationSeconds is the latency of computed (uncached) results
	AnalyzerDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyzer_duration_seconds",
			Help:      "Duration of analyzer computations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"operation"},
	)

	// CoercedValuesTotal counts statistic values replaced by 0, by kind
	// (undefined, fault)
	CoercedValuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_coerced_values_total",
			Help:      "Statistic values coerced to 0 by kind.",
		},
		[]string{"kind"},
	)
)
