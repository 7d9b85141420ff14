// Package metrics exposes Prometheus collectors for the HTTP layer and the
// evaluation engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speakeasy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speakeasy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Evaluation metrics
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speakeasy_evaluations_total",
			Help: "Total number of graded responses",
		},
		[]string{"set", "outcome"},
	)

	evaluationScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speakeasy_evaluation_score",
			Help:    "Distribution of response scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"set"},
	)

	correctionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speakeasy_corrections_total",
			Help: "Total number of corrections issued",
		},
		[]string{"set"},
	)

	sessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speakeasy_sessions_completed_total",
			Help: "Total number of completed practice sessions",
		},
		[]string{"kind", "level"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, durationSeconds float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusClass(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	}
	return "unknown"
}

// RecordEvaluation records one graded response from set.
func RecordEvaluation(set string, score float64, passed, corrected bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	evaluationsTotal.WithLabelValues(set, outcome).Inc()
	evaluationScore.WithLabelValues(set).Observe(score)
	if corrected {
		correctionsTotal.WithLabelValues(set).Inc()
	}
}

// RecordSessionCompleted records a finished session. level is empty for
// learning sessions.
func RecordSessionCompleted(kind, level string) {
	sessionsCompleted.WithLabelValues(kind, level).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
