package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors served at /metrics.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tripwise",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripwise",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tripwise",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "path"},
	)

	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripwise",
			Subsystem: "itinerary",
			Name:      "generations_total",
			Help:      "Itinerary generations by provider and outcome (ok, fallback, cached).",
		},
		[]string{"provider", "outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tripwise",
			Subsystem: "itinerary",
			Name:      "generation_duration_seconds",
			Help:      "Latency of the model call behind a generation.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~1min
		},
		[]string{"provider"},
	)

	externalCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripwise",
			Subsystem: "external",
			Name:      "calls_total",
			Help:      "Calls to third-party APIs (map, transcription, analysis).",
		},
		[]string{"service", "operation", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		generations,
		generationDuration,
		externalCalls,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RequestStarted() { httpInFlight.Inc() }

func RequestFinished(method, path, status string, duration time.Duration) {
	httpInFlight.Dec()
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration counts one itinerary generation. duration is ignored for
// cached results.
func RecordGeneration(provider, outcome string, duration time.Duration) {
	generations.WithLabelValues(provider, outcome).Inc()
	if outcome != "cached" {
		generationDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

func RecordExternalCall(service, operation string, err error) {
	success := "true"
	if err != nil {
		success = "false"
	}
	externalCalls.WithLabelValues(service, operation, success).Inc()
}
