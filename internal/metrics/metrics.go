// Package metrics exposes editor counters in Prometheus format.
//
// All methods are safe on a nil *Metrics so callers can run without
// instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heimdex_editor"

const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultRejected = "rejected"
)

type Metrics struct {
	registry *prometheus.Registry

	sessions  prometheus.Gauge
	clipEdits *prometheus.CounterVec
	pointer   *prometheus.CounterVec
	uploads   *prometheus.CounterVec
	exports   *prometheus.CounterVec
	inFlight  *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Editor sessions currently open.",
		}),
		clipEdits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clip_edits_total",
			Help:      "Clip add/update/select operations by outcome.",
		}, []string{"op", "result"}),
		pointer: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pointer_events_total",
			Help:      "Timeline pointer events by type.",
		}, []string{"type"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Media uploads by result.",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Clip exports by result.",
		}, []string{"result"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operations_in_flight",
			Help:      "Backend operations currently outstanding.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(m.sessions, m.clipEdits, m.pointer, m.uploads, m.exports, m.inFlight)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}

func (m *Metrics) ClipEdit(op string, err error) {
	if m != nil {
		m.clipEdits.WithLabelValues(op, result(err)).Inc()
	}
}

func (m *Metrics) PointerEvent(kind string) {
	if m != nil {
		m.pointer.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Upload(res string) {
	if m != nil {
		m.uploads.WithLabelValues(res).Inc()
	}
}

func (m *Metrics) Export(res string) {
	if m != nil {
		m.exports.WithLabelValues(res).Inc()
	}
}

// Track marks op as outstanding and returns the func that clears it.
func (m *Metrics) Track(op string) func() {
	if m == nil {
		return func() {}
	}
	g := m.inFlight.WithLabelValues(op)
	g.Inc()
	return g.Dec
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
