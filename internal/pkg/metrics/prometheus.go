package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitevoice",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitevoice",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sitevoice",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Webhook metrics
	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitevoice",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Webhook events received, by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// Voice metrics
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitevoice",
			Subsystem: "voice",
			Name:      "extractions_total",
			Help:      "Transcript extractions, by input kind and outcome",
		},
		[]string{"input", "outcome"},
	)

	extractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sitevoice",
			Subsystem: "voice",
			Name:      "extraction_duration_seconds",
			Help:      "Duration of transcript extraction in seconds",
			Buckets:   []float64{.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	voiceBackendUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sitevoice",
			Subsystem: "voice",
			Name:      "backend_up",
			Help:      "1 when the last voice backend health probe succeeded",
		},
	)

	// Retention metrics
	prunedEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sitevoice",
			Subsystem: "events",
			Name:      "pruned_total",
			Help:      "Processed-event rows deleted by the pruner",
		},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the wrapped writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Get route pattern from chi
		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWebhook records a webhook delivery outcome (processed, duplicate, ignored, rejected, failed)
func RecordWebhook(source, outcome string) {
	webhookEventsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordExtraction records a transcript extraction
func RecordExtraction(input, outcome string, duration time.Duration) {
	extractionsTotal.WithLabelValues(input, outcome).Inc()
	extractionDuration.Observe(duration.Seconds())
}

// SetVoiceBackendUp records the result of the last health probe
func SetVoiceBackendUp(up bool) {
	if up {
		voiceBackendUp.Set(1)
		return
	}
	voiceBackendUp.Set(0)
}

// RecordPruned adds n deleted processed-event rows
func RecordPruned(n int64) {
	prunedEventsTotal.Add(float64(n))
}
