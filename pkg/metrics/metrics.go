package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RefreshMetrics records metadata for live-state refresh cycles.
type RefreshMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewRefreshMetrics registers the refresh metrics on the provided registerer.
func NewRefreshMetrics(reg prometheus.Registerer) *RefreshMetrics {
	if reg == nil {
		return &RefreshMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "refresh_cycle_duration_seconds",
		Help:    "Duration of live-state refresh cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refresh_cycle_success",
		Help: "Successful live-state refresh cycles.",
	}, []string{"mode"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refresh_cycle_failure",
		Help: "Failed live-state refresh cycles.",
	}, []string{"mode"})
	reg.MustRegister(duration, success, failure)
	return &RefreshMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration of a cycle in the given mode.
func (r *RefreshMetrics) ObserveDuration(mode string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the given mode.
func (r *RefreshMetrics) IncSuccess(mode string) {
	if r == nil || r.success == nil {
		return
	}
	r.success.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncFailure increments the failure counter for the given mode.
func (r *RefreshMetrics) IncFailure(mode string) {
	if r == nil || r.failure == nil {
		return
	}
	r.failure.WithLabelValues(normalizeLabel(mode)).Inc()
}

// GatewayMetrics records backend gateway request outcomes per resource.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of backend gateway requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_request_failure",
		Help: "Failed backend gateway requests.",
	}, []string{"resource"})
	reg.MustRegister(duration, failure)
	return &GatewayMetrics{duration: duration, failure: failure}
}

// ObserveRequest records a request duration for the named resource.
func (g *GatewayMetrics) ObserveRequest(resource string, duration time.Duration) {
	if g == nil || g.duration == nil {
		return
	}
	g.duration.WithLabelValues(normalizeLabel(resource)).Observe(duration.Seconds())
}

// IncFailure increments the failure counter for the named resource.
func (g *GatewayMetrics) IncFailure(resource string) {
	if g == nil || g.failure == nil {
		return
	}
	g.failure.WithLabelValues(normalizeLabel(resource)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
