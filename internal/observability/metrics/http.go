package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	evaluationsTotal  *prometheus.CounterVec
	failSafeTotal     *prometheus.CounterVec
	degradedTotal     *prometheus.CounterVec
	retrievedContexts *prometheus.HistogramVec
	evaluationSeconds *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "guardian",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "guardian",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	evaluationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "eval",
			Name:      "evaluations_total",
			Help:      "Total completed safety evaluations by verdict.",
		},
		[]string{"service", "verdict"},
	)
	failSafeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "eval",
			Name:      "fail_safe_total",
			Help:      "Total evaluations that fell back to the conservative verdict.",
		},
		[]string{"service"},
	)
	degradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "eval",
			Name:      "degraded_total",
			Help:      "Total evaluations completed without retrieved policy context.",
		},
		[]string{"service"},
	)
	retrievedContexts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "guardian",
			Subsystem: "eval",
			Name:      "retrieved_contexts",
			Help:      "Distribution of context snippets per evaluation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	evaluationSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "guardian",
			Subsystem: "eval",
			Name:      "duration_seconds",
			Help:      "Evaluation pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		evaluationsTotal, failSafeTotal, degradedTotal, retrievedContexts, evaluationSeconds,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		evaluationsTotal:  evaluationsTotal,
		failSafeTotal:     failSafeTotal,
		degradedTotal:     degradedTotal,
		retrievedContexts: retrievedContexts,
		evaluationSeconds: evaluationSeconds,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/delete-policy/"):
		return "/delete-policy/{policy_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordEvaluation(service, verdict string, contextCount int, degraded bool, duration time.Duration) {
	if verdict == "" {
		verdict = "unknown"
	}
	m.evaluationsTotal.WithLabelValues(service, verdict).Inc()
	m.retrievedContexts.WithLabelValues(service).Observe(float64(contextCount))
	m.evaluationSeconds.WithLabelValues(service).Observe(duration.Seconds())
	if degraded {
		m.degradedTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordFailSafe(service string) {
	m.failSafeTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
