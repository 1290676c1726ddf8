package prometheus

import (
	"strconv"
	"time"

	"crm-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Lead metrics
	LeadOperationsCounter *prometheus.CounterVec
	PublicLeadCounter     *prometheus.CounterVec

	// Messaging metrics
	MessageSendCounter *prometheus.CounterVec

	// Access control metrics
	AccessDeniedCounter *prometheus.CounterVec

	// Database operation metrics
	DBOperationHistogram *prometheus.HistogramVec
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LeadOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_lead_operations_total",
			Help: "Total number of lead operations",
		},
		[]string{"operation"},
	)

	PublicLeadCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_public_lead_submissions_total",
			Help: "Total number of public embed form submissions",
		},
		[]string{"outcome"},
	)

	MessageSendCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_messages_sent_total",
			Help: "Total number of message dispatch attempts",
		},
		[]string{"channel", "outcome"},
	)

	AccessDeniedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_access_denied_total",
			Help: "Total number of rejected tenant access attempts",
		},
		[]string{"reason"},
	)

	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
}

// RecordLeadOperation increments the counter for a lead operation
func RecordLeadOperation(operation string) {
	if LeadOperationsCounter != nil {
		LeadOperationsCounter.WithLabelValues(operation).Inc()
	}
}

// RecordPublicLead increments the public submission counter
func RecordPublicLead(outcome string) {
	if PublicLeadCounter != nil {
		PublicLeadCounter.WithLabelValues(outcome).Inc()
	}
}

// RecordMessageSend increments the message dispatch counter
func RecordMessageSend(channel, outcome string) {
	if MessageSendCounter != nil {
		MessageSendCounter.WithLabelValues(channel, outcome).Inc()
	}
}

// RecordAccessDenied increments the access denial counter
func RecordAccessDenied(reason string) {
	if AccessDeniedCounter != nil {
		AccessDeniedCounter.WithLabelValues(reason).Inc()
	}
}

// TrackDBOperation returns a function that records operation duration when
// called, intended for use with defer
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		if DBOperationHistogram != nil {
			DBOperationHistogram.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}
	}
}

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
			HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)

			return err
		}
	}
}
