package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for the membership module.
// Tracks registrations, status transitions and critical path durations.
type Metrics struct {
	Registrations       *prometheus.CounterVec
	Transitions         *prometheus.CounterVec
	Failures            *prometheus.CounterVec
	GeographyDropped    prometheus.Counter
	Expired             prometheus.Counter
	RegisterDuration    prometheus.Histogram
	TransitionDuration  prometheus.Histogram
	ExpirySweepDuration prometheus.Histogram
}

// New registers membership metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers membership metrics with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_registrations_total",
			Help: "Total number of members registered, by channel",
		}, []string{"channel"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_transitions_total",
			Help: "Total number of successful status transitions, by target status",
		}, []string{"to"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_operation_failures_total",
			Help: "Total number of failed membership operations, by error code",
		}, []string{"operation", "code"}),
		GeographyDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "membership_geography_dropped_total",
			Help: "Registrations that continued without an unresolvable geography reference",
		}),
		Expired: factory.NewCounter(prometheus.CounterOpts{
			Name: "membership_sweep_expired_total",
			Help: "Members expired by the expiry sweep",
		}),
		RegisterDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "membership_register_duration_seconds",
			Help:    "Duration of member registration (geography, identity and persistence)",
			Buckets: durationBuckets,
		}),
		TransitionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "membership_transition_duration_seconds",
			Help:    "Duration of lifecycle transitions",
			Buckets: durationBuckets,
		}),
		ExpirySweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "membership_sweep_duration_seconds",
			Help:    "Duration of one expiry sweep across all tenants",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementRegistrations(channel string) {
	m.Registrations.WithLabelValues(channel).Inc()
}

func (m *Metrics) IncrementTransitions(to string) {
	m.Transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IncrementFailures(operation, code string) {
	m.Failures.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) IncrementGeographyDropped() {
	m.GeographyDropped.Inc()
}

func (m *Metrics) AddExpired(n int) {
	m.Expired.Add(float64(n))
}

// ObserveRegister records the duration of a registration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveTransition records the duration of a lifecycle transition.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveExpirySweep(start time.Time) {
	m.ExpirySweepDuration.Observe(time.Since(start).Seconds())
}
