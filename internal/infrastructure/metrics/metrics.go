// Package metrics exports Prometheus collectors for the HTTP layer and the
// summary and export pipelines.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances can coexist in tests.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPLatency    *prometheus.HistogramVec
	Generations    *prometheus.CounterVec
	GenLatency     prometheus.Histogram
	Exports        *prometheus.CounterVec
	EntriesWritten *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_calls_total",
			Help:      "Generator calls by summary mode and outcome",
		}, []string{"mode", "outcome"}),
		GenLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_call_duration_seconds",
			Help:      "Generator call latency in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}),
		Exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Rendered exports by format",
		}, []string{"format"}),
		EntriesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diary_entry_writes_total",
			Help:      "Diary entry mutations by operation",
		}, []string{"op"}),
	}
}

func (m *Metrics) ObserveHTTP(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ObserveGeneration(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(mode, outcome).Inc()
	m.GenLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(format).Inc()
}

func (m *Metrics) ObserveEntryWrite(op string) {
	if m == nil {
		return
	}
	m.EntriesWritten.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
