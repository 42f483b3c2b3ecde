// Package metrics exposes Prometheus metrics for the document library.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doclib_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doclib_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Storage backend metrics
	storageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doclib_storage_operation_duration_seconds",
			Help:    "Storage backend operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	storageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doclib_storage_operations_total",
			Help: "Total storage backend operations",
		},
		[]string{"backend", "operation", "status"},
	)

	storedBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doclib_stored_bytes_total",
			Help: "Total bytes written to storage backends",
		},
		[]string{"backend"},
	)

	// Version lifecycle metrics
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doclib_uploads_total",
			Help: "Total upload attempts by category and outcome",
		},
		[]string{"category", "result"},
	)

	activationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doclib_activations_total",
			Help: "Total version activations by category",
		},
		[]string{"category"},
	)

	deletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doclib_deletions_total",
			Help: "Total version soft deletions by category",
		},
		[]string{"category"},
	)

	reconciliationGapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doclib_reconciliation_gaps_total",
			Help: "Stored objects that could not be removed after a catalog change",
		},
		[]string{"category", "reason"},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordStorageOperation(backend, operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	storageOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	storageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
}

func RecordStoredBytes(backend string, size int64) {
	if size > 0 {
		storedBytesTotal.WithLabelValues(backend).Add(float64(size))
	}
}

// RecordUpload counts an upload attempt. result is "success", "rejected" or "error".
func RecordUpload(category, result string) {
	uploadsTotal.WithLabelValues(category, result).Inc()
}

func RecordActivation(category string) {
	activationsTotal.WithLabelValues(category).Inc()
}

func RecordDeletion(category string) {
	deletionsTotal.WithLabelValues(category).Inc()
}

func RecordReconciliationGap(category, reason string) {
	reconciliationGapsTotal.WithLabelValues(category, reason).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
