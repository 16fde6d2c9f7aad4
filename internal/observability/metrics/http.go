package metrics

import (
	"bufio"
	"fmt"
	"net"
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

	qaRequestsTotal      *prometheus.CounterVec
	qaFallbackTotal      *prometheus.CounterVec
	qaExpansionDegraded  *prometheus.CounterVec
	qaRetrievedChunks    *prometheus.HistogramVec
	qaDuration           *prometheus.HistogramVec
	indexSnapshotSize    prometheus.Gauge
	indexRebuildsTotal   *prometheus.CounterVec
	indexRebuildDuration *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askcampus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askcampus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "askcampus",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	qaRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askcampus",
			Subsystem: "qa",
			Name:      "requests_total",
			Help:      "Total completed question-answering requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	qaFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askcampus",
			Subsystem: "qa",
			Name:      "fallback_total",
			Help:      "Total answers that used the grounding fallback phrase.",
		},
		[]string{"service"},
	)
	qaExpansionDegraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askcampus",
			Subsystem: "qa",
			Name:      "expansion_degraded_total",
			Help:      "Total queries answered with the original query after expansion failed.",
		},
		[]string{"service"},
	)
	qaRetrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askcampus",
			Subsystem: "qa",
			Name:      "retrieved_chunks",
			Help:      "Distribution of retrieved chunks per answered question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	qaDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askcampus",
			Subsystem: "qa",
			Name:      "duration_seconds",
			Help:      "End-to-end question answering duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	indexSnapshotSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "askcampus",
			Subsystem: "index",
			Name:      "snapshot_chunks",
			Help:      "Number of chunks in the active index snapshot.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexRebuildsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askcampus",
			Subsystem: "index",
			Name:      "rebuilds_total",
			Help:      "Total index snapshot rebuilds by status.",
		},
		[]string{"service", "status"},
	)
	indexRebuildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askcampus",
			Subsystem: "index",
			Name:      "rebuild_duration_seconds",
			Help:      "Index snapshot rebuild duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		qaRequestsTotal,
		qaFallbackTotal,
		qaExpansionDegraded,
		qaRetrievedChunks,
		qaDuration,
		indexSnapshotSize,
		indexRebuildsTotal,
		indexRebuildDuration,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		qaRequestsTotal:      qaRequestsTotal,
		qaFallbackTotal:      qaFallbackTotal,
		qaExpansionDegraded:  qaExpansionDegraded,
		qaRetrievedChunks:    qaRetrievedChunks,
		qaDuration:           qaDuration,
		indexSnapshotSize:    indexSnapshotSize,
		indexRebuildsTotal:   indexRebuildsTotal,
		indexRebuildDuration: indexRebuildDuration,
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
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordQA(service string, grounded bool, sourceCount int, duration time.Duration) {
	outcome := "grounded"
	if !grounded {
		outcome = "fallback"
		m.qaFallbackTotal.WithLabelValues(service).Inc()
	}
	m.qaRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.qaRetrievedChunks.WithLabelValues(service).Observe(float64(sourceCount))
	m.qaDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordExpansionDegraded(service string) {
	m.qaExpansionDegraded.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) SetSnapshotSize(chunks int) {
	m.indexSnapshotSize.Set(float64(chunks))
}

func (m *HTTPServerMetrics) RecordIndexRebuild(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.indexRebuildsTotal.WithLabelValues(service, status).Inc()
	if err == nil {
		m.indexRebuildDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
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

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
