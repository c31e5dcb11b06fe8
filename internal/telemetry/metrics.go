// Package telemetry holds the Prometheus instruments shared by the engine,
// the stores and the LLM layer.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	OpDuration    *prometheus.HistogramVec
	OpErrors      *prometheus.CounterVec
	ClampedValues *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
	LLMRequests   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kinderpath_engine_op_duration_seconds",
				Help:    "Duration of engine operations",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"op"},
		),
		OpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinderpath_engine_op_errors_total",
				Help: "Engine operations that returned an error",
			},
			[]string{"op", "kind"},
		),
		ClampedValues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinderpath_clamped_values_total",
				Help: "Stored values clamped into their valid range on read",
			},
			[]string{"field"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinderpath_problem_cache_requests_total",
				Help: "Problem cache lookups by result",
			},
			[]string{"result"},
		),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinderpath_llm_requests_total",
				Help: "LLM provider calls by provider and status",
			},
			[]string{"provider", "status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.OpDuration, m.OpErrors, m.ClampedValues, m.CacheRequests, m.LLMRequests)
	}
	return m
}

// ObserveOp records the duration of op and, when err is non-nil, an error of
// the given kind.
func (m *Metrics) ObserveOp(op string, start time.Time, err error, kind string) {
	if m == nil {
		return
	}
	m.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.OpErrors.WithLabelValues(op, kind).Inc()
	}
}

func (m *Metrics) Clamped(field string) {
	if m == nil {
		return
	}
	m.ClampedValues.WithLabelValues(field).Inc()
}

func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) LLMRequest(provider string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.LLMRequests.WithLabelValues(provider, status).Inc()
}
