// Package obs holds the Prometheus instruments for srcode.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome and result label values.
const (
	OutcomeSuccess = "success"
	OutcomeDemo    = "demo"

	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheExpired = "expired"
)

// Metrics is a set of instruments registered on one registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	authAttempts    *prometheus.CounterVec
	barcodeRequests *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	buildInfo           *prometheus.GaugeVec
}

// New creates and registers all instruments on a fresh registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srcode_auth_attempts_total",
			Help: "Fusion login attempts by outcome (success, demo or an error kind).",
		}, []string{"outcome"}),

		barcodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srcode_barcode_requests_total",
			Help: "Barcode mint requests by outcome.",
		}, []string{"outcome"}),

		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "srcode_token_cache_lookups_total",
			Help: "Token cache lookups by result.",
		}, []string{"result"}),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srcode_build_info",
			Help: "srcode build information.",
		}, []string{"version"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authAttempts,
		m.barcodeRequests,
		m.cacheLookups,
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.buildInfo,
	)
	return m
}

// Registry exposes the underlying registry (mostly for tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SetBuildInfo(version string) {
	if m == nil {
		return
	}
	m.buildInfo.WithLabelValues(version).Set(1)
}

func (m *Metrics) AuthAttempt(outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) BarcodeRequest(outcome string) {
	if m == nil {
		return
	}
	m.barcodeRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Instrument records count, latency and in-flight for one route. The route
// label is fixed so that path parameters cannot blow up cardinality.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
