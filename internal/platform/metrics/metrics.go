package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics carries the punch-engine counters. A nil *Metrics is valid and
// records nothing, so tests and callers without a registry can pass nil.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	GeofenceViolations prometheus.Counter
	TransitionDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "timeclock_punch_transitions_total",
			Help: "Punch state transitions by kind and outcome",
		}, []string{"kind", "outcome"}),
		GeofenceViolations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_geofence_violations_total",
			Help: "Punches recorded outside the assigned geofence",
		}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "timeclock_punch_transition_duration_seconds",
			Help:    "Duration of punch transition handling including the store round-trip",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) ObserveTransition(kind, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(kind, outcome).Inc()
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncGeofenceViolation() {
	if m == nil {
		return
	}
	m.GeofenceViolations.Inc()
}
