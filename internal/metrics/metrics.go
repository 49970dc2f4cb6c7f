// Package metrics defines custom Prometheus metrics for lfsgate.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// registerOnce ensures Register() is idempotent.
var registerOnce sync.Once

// sizeBuckets are exponential buckets for request/response size histograms (bytes).
var sizeBuckets = []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576}

// objectBuckets bucket the number of objects in a batch.
var objectBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000}

// HTTP metrics (RED: Rate, Errors, Duration).
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfsgate_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency in seconds by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lfsgate_http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPRequestSize observes request body size in bytes.
	HTTPRequestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lfsgate_http_request_size_bytes",
			Help:    "Request body size in bytes",
			Buckets: sizeBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize observes response body size in bytes.
	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lfsgate_http_response_size_bytes",
			Help:    "Response body size in bytes",
			Buckets: sizeBuckets,
		},
		[]string{"method", "path"},
	)
)

// LFS batch metrics.
var (
	// BatchRequestsTotal counts batch requests by operation and outcome code.
	// Requests rejected before the body is decoded use operation "unknown".
	BatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfsgate_batch_requests_total",
			Help: "LFS batch requests by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	// BatchObjects observes the number of objects per accepted batch.
	BatchObjects = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lfsgate_batch_objects",
			Help:    "Objects per accepted batch request",
			Buckets: objectBuckets,
		},
		[]string{"operation"},
	)

	// ObjectsSignedTotal counts presigned URLs issued by operation.
	ObjectsSignedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfsgate_objects_signed_total",
			Help: "Presigned URLs issued",
		},
		[]string{"operation"},
	)

	// SignDuration observes the wall time of a whole batch fan-out.
	SignDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lfsgate_sign_duration_seconds",
			Help:    "Time to sign all objects of a batch",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
)

// Register registers all Prometheus collectors with the default registry.
// This must be called explicitly (typically from main) so that metrics
// registration can be made conditional on configuration. It is safe to call
// multiple times; subsequent calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPRequestSize,
			HTTPResponseSize,
			BatchRequestsTotal,
			BatchObjects,
			ObjectsSignedTotal,
			SignDuration,
		)
		// Initialize the batch counters so they appear in /metrics output
		// before the first batch request.
		for _, op := range []string{"upload", "download"} {
			BatchRequestsTotal.WithLabelValues(op, "200")
			ObjectsSignedTotal.WithLabelValues(op)
		}
	})
}

// openAPIPaths are the documents huma serves for an OpenAPIPath of /openapi.
var openAPIPaths = map[string]bool{
	"/openapi.json":     true,
	"/openapi.yaml":     true,
	"/openapi-3.0.json": true,
	"/openapi-3.0.yaml": true,
}

// NormalizePath maps request paths to low-cardinality label values. The
// bucket locator in batch paths is never used as a label.
func NormalizePath(path string) string {
	switch path {
	case "/", "":
		return "/"
	case "/health":
		return "/health"
	case "/metrics":
		return "/metrics"
	}

	switch {
	case strings.HasSuffix(path, "/objects/batch"):
		return "/{locator}/objects/batch"
	case path == "/docs" || strings.HasPrefix(path, "/docs/"):
		return "/docs"
	case openAPIPaths[path]:
		return "/openapi"
	}
	return "/{other}"
}
