package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records gateway dispatch outcomes per variant and operation.
type DispatchMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_dispatch_duration_seconds",
		Help:    "Duration of gateway dispatch calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant", "operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_dispatch_success",
		Help: "Gateway dispatches that returned a success result.",
	}, []string{"variant", "operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_dispatch_failure",
		Help: "Gateway dispatches that returned a failure result or error.",
	}, []string{"variant", "operation"})
	reg.MustRegister(duration, success, failure)
	return &DispatchMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration of one dispatch call.
func (d *DispatchMetrics) ObserveDuration(variant, operation string, duration time.Duration) {
	if d == nil || d.duration == nil {
		return
	}
	d.duration.WithLabelValues(normalizeLabel(variant), normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter.
func (d *DispatchMetrics) IncSuccess(variant, operation string) {
	if d == nil || d.success == nil {
		return
	}
	d.success.WithLabelValues(normalizeLabel(variant), normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter.
func (d *DispatchMetrics) IncFailure(variant, operation string) {
	if d == nil || d.failure == nil {
		return
	}
	d.failure.WithLabelValues(normalizeLabel(variant), normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
