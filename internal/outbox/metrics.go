package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks relay throughput and broker failures.
type Metrics struct {
	Published prometheus.Counter
	Failures  prometheus.Counter
}

// NewMetrics registers relay metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "membership_outbox_published_total",
			Help: "Total number of outbox events published to Kafka",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "membership_outbox_batch_failures_total",
			Help: "Total number of outbox batches that failed to publish",
		}),
	}
}

func (m *Metrics) AddPublished(n int) {
	m.Published.Add(float64(n))
}

func (m *Metrics) IncrementFailures() {
	m.Failures.Inc()
}
