// Package metrics holds the Prometheus collectors for the members API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panelhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panelhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// OperationsTotal counts member operations (list, assign, stats, import).
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panelhub_operations_total",
			Help: "Total number of member operations",
		},
		[]string{"operation", "status"},
	)
	// MembersAssigned counts members whose manufacturer was changed by bulk assignment.
	MembersAssigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "panelhub_members_assigned_total",
			Help: "Members modified by bulk manufacturer assignment",
		},
	)
	// MembersImported counts members written by CSV import.
	MembersImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "panelhub_members_imported_total",
			Help: "Members inserted by CSV import",
		},
	)
)

// Operation names used as the "operation" label.
const (
	OpList   = "list"
	OpGet    = "get"
	OpAssign = "assign"
	OpStats  = "stats"
	OpImport = "import"
)

// Observe records the outcome of one operation.
func Observe(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	OperationsTotal.WithLabelValues(op, status).Inc()
}
