// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration by route template
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atendimentos_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// CacheRequests counts cache lookups by result (hit or miss)
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atendimentos_cache_requests_total",
			Help: "Number of cache lookups",
		},
		[]string{"result"},
	)

	// StoreOperations counts store calls by backend, operation and outcome
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atendimentos_store_operations_total",
			Help: "Number of store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// FrontendErrors counts errors reported by the browser
	FrontendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atendimentos_frontend_errors_total",
			Help: "Number of errors reported by the frontend",
		},
		[]string{"severity"},
	)
)
