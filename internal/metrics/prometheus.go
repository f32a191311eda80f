package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the chat client
type Metrics struct {
	// Recording metrics
	RecordingsStarted   prometheus.Counter
	RecordingsCompleted prometheus.Counter
	RecordingsFailed    prometheus.Counter
	RecordingDuration   prometheus.Histogram
	RecordingBytes      prometheus.Histogram

	// Submission metrics
	SubmissionRequests  *prometheus.CounterVec
	SubmissionSuccesses *prometheus.CounterVec
	SubmissionFailures  *prometheus.CounterVec
	SubmissionDuration  *prometheus.HistogramVec

	// Message metrics
	MessagesAppended *prometheus.CounterVec
	HistoryFetches   prometheus.Counter
	HistoryEntries   prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Recording metrics
		RecordingsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aichat_recordings_started_total",
			Help: "Total number of recording sessions started",
		}),
		RecordingsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aichat_recordings_completed_total",
			Help: "Total number of recording sessions finalized into a WAV artifact",
		}),
		RecordingsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aichat_recordings_failed_total",
			Help: "Total number of recording sessions that failed to encode",
		}),
		RecordingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aichat_recording_duration_seconds",
			Help:    "Duration of finished recording sessions",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17 minutes
		}),
		RecordingBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aichat_recording_size_bytes",
			Help:    "Size of encoded WAV artifacts in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~4MB
		}),

		// Submission metrics
		SubmissionRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aichat_submission_requests_total",
			Help: "Total number of webhook submissions attempted",
		}, []string{"encoding"}),
		SubmissionSuccesses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aichat_submission_successes_total",
			Help: "Total number of webhook submissions that succeeded",
		}, []string{"encoding"}),
		SubmissionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aichat_submission_failures_total",
			Help: "Total number of webhook submissions that failed",
		}, []string{"encoding"}),
		SubmissionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aichat_submission_duration_seconds",
			Help:    "Duration of webhook submissions",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}, []string{"encoding"}),

		// Message metrics
		MessagesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aichat_messages_appended_total",
			Help: "Total number of messages appended to the session log",
		}, []string{"side"}),
		HistoryFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aichat_history_fetches_total",
			Help: "Total number of history hydrations",
		}),
		HistoryEntries: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aichat_history_entries",
			Help:    "Number of entries per hydrated history batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aichat_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aichat_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aichat_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordRecordingStarted increments the recordings started counter
func (m *Metrics) RecordRecordingStarted() {
	m.RecordingsStarted.Inc()
}

// RecordRecordingCompleted records a finalized recording
func (m *Metrics) RecordRecordingCompleted(durationSeconds float64, sizeBytes int) {
	m.RecordingsCompleted.Inc()
	m.RecordingDuration.Observe(durationSeconds)
	m.RecordingBytes.Observe(float64(sizeBytes))
}

// RecordRecordingFailed increments the encode failure counter
func (m *Metrics) RecordRecordingFailed() {
	m.RecordingsFailed.Inc()
}

// RecordSubmission records an attempted webhook submission and its outcome
func (m *Metrics) RecordSubmission(encoding string, success bool, durationSeconds float64) {
	m.SubmissionRequests.WithLabelValues(encoding).Inc()
	m.SubmissionDuration.WithLabelValues(encoding).Observe(durationSeconds)
	if success {
		m.SubmissionSuccesses.WithLabelValues(encoding).Inc()
	} else {
		m.SubmissionFailures.WithLabelValues(encoding).Inc()
	}
}

// RecordMessageAppended increments the message counter for one side
func (m *Metrics) RecordMessageAppended(isRight bool) {
	side := "assistant"
	if isRight {
		side = "user"
	}
	m.MessagesAppended.WithLabelValues(side).Inc()
}

// RecordHistoryFetch records a history hydration
func (m *Metrics) RecordHistoryFetch(entries int) {
	m.HistoryFetches.Inc()
	m.HistoryEntries.Observe(float64(entries))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
