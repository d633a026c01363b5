package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybersource_gateway_requests_total",
			Help: "Total number of gateway requests by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cybersource_gateway_request_duration_seconds",
			Help:    "Duration of gateway requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	auditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cybersource_audit_write_failures_total",
			Help: "Total number of failed audit store writes",
		},
	)
)

// RecordGatewayRequest records one gateway round-trip. Status is the
// transaction status on success or an error code on failure.
func RecordGatewayRequest(operation, status string, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, status).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAuditWriteFailure counts a failed audit store write
func RecordAuditWriteFailure() {
	auditWriteFailures.Inc()
}
