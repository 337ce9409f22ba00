// Package metrics exposes the service's Prometheus collectors. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wessley_vin"

// Metrics holds the decoder, scan and HTTP collectors.
type Metrics struct {
	Decodes        *prometheus.CounterVec
	CheckDigits    *prometheus.CounterVec
	DecodeDuration prometheus.Histogram
	Scans          *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates Metrics on a fresh registry that also carries the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWith(reg, reg)
}

// NewWith registers the collectors on reg and serves them from g.
func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decodes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decodes_total",
			Help:      "VIN decode attempts by outcome (ok or error code).",
		}, []string{"outcome"}),
		CheckDigits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_digits_total",
			Help:      "Check digit verdicts of structurally valid VINs.",
		}, []string{"verdict"}),
		DecodeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Time spent decoding a single VIN.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		Scans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scanner events processed by source and outcome.",
		}, []string{"source", "outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		gatherer: g,
	}
}

// ObserveDecode records one decode. verdict is empty when the VIN never
// reached check digit evaluation.
func (m *Metrics) ObserveDecode(outcome, verdict string, d time.Duration) {
	if m == nil {
		return
	}
	m.Decodes.WithLabelValues(outcome).Inc()
	if verdict != "" {
		m.CheckDigits.WithLabelValues(verdict).Inc()
	}
	m.DecodeDuration.Observe(d.Seconds())
}

// ObserveScan records one processed scanner event.
func (m *Metrics) ObserveScan(source, outcome string) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(source, outcome).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, code).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
