package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records dispatch counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the dispatch metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storegate",
				Subsystem: "dispatch",
				Name:      "requests_total",
				Help:      "Total number of requests dispatched to backends",
			},
			[]string{"backend", "method", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storegate",
				Subsystem: "dispatch",
				Name:      "duration_seconds",
				Help:      "Duration of backend round trips",
				Buckets: []float64{
					.001, .005, .01, .025,
					.05, .1, .25, .5,
					1, 2.5, 5, 10,
				},
			},
			[]string{"backend", "method"},
		),
	}
}

func (m *Metrics) observe(b Backend, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(b.String(), method, outcome).Inc()
	if outcome == outcomeOK {
		m.duration.WithLabelValues(b.String(), method).Observe(elapsed.Seconds())
	}
}
