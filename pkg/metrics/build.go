package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const outcomeOK = "ok"

// BuildMetrics records envelope builds by outcome and payload size.
type BuildMetrics struct {
	builds  *prometheus.CounterVec
	payload prometheus.Histogram
}

// NewBuildMetrics registers the builder metrics on the provided registerer.
func NewBuildMetrics(reg prometheus.Registerer) *BuildMetrics {
	if reg == nil {
		return &BuildMetrics{}
	}
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "envelope_builds_total",
		Help: "Envelope builds by outcome (ok or error code).",
	}, []string{"outcome"})
	payload := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "envelope_bytes",
		Help:    "Size of serialized envelopes in bytes.",
		Buckets: prometheus.ExponentialBuckets(32, 4, 8),
	})
	reg.MustRegister(builds, payload)
	return &BuildMetrics{
		builds:  builds,
		payload: payload,
	}
}

// ObserveSuccess records a serialized envelope of n bytes.
func (m *BuildMetrics) ObserveSuccess(n int) {
	if m == nil || m.builds == nil {
		return
	}
	m.builds.WithLabelValues(outcomeOK).Inc()
	m.payload.Observe(float64(n))
}

// ObserveFailure records a build rejected with the given error code.
func (m *BuildMetrics) ObserveFailure(code string) {
	if m == nil || m.builds == nil {
		return
	}
	m.builds.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(code string) string {
	if code == "" {
		return "unknown"
	}
	return code
}
