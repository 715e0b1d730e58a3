package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthFlowMetrics records metadata for the wallet auth flow.
type AuthFlowMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewAuthFlowMetrics registers the auth flow metrics on the provided registerer.
func NewAuthFlowMetrics(reg prometheus.Registerer) *AuthFlowMetrics {
	if reg == nil {
		return &AuthFlowMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auth_step_duration_seconds",
		Help:    "Duration of wallet auth steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_step_success",
		Help: "Successful wallet auth steps.",
	}, []string{"step"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_step_failure",
		Help: "Failed wallet auth steps.",
	}, []string{"step"})
	reg.MustRegister(duration, success, failure)
	return &AuthFlowMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named auth step.
func (a *AuthFlowMetrics) ObserveDuration(step string, duration time.Duration) {
	if a == nil || a.duration == nil {
		return
	}
	a.duration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named auth step.
func (a *AuthFlowMetrics) IncSuccess(step string) {
	if a == nil || a.success == nil {
		return
	}
	a.success.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncFailure increments the failure counter for the named auth step.
func (a *AuthFlowMetrics) IncFailure(step string) {
	if a == nil || a.failure == nil {
		return
	}
	a.failure.WithLabelValues(normalizeLabel(step)).Inc()
}

func normalizeLabel(step string) string {
	if step == "" {
		return "unknown"
	}
	return step
}
