package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for enforcement runs.
//
// All metrics are prefixed with "lawgiver_":
//   - lawgiver_rules_total{status} - rules finished, by final status
//   - lawgiver_laws_total{law,status} - laws finished, by law and status
//   - lawgiver_law_duration_seconds{law} - law execution times
type Metrics struct {
	RulesTotal  *prometheus.CounterVec
	LawsTotal   *prometheus.CounterVec
	LawDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RulesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lawgiver_rules_total",
				Help: "Total number of rules finished, by final status",
			},
			[]string{"status"},
		),
		LawsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lawgiver_laws_total",
				Help: "Total number of laws finished, by law and status",
			},
			[]string{"law", "status"},
		),
		LawDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lawgiver_law_duration_seconds",
				Help:    "Duration of law execution in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"law"},
		),
	}
}

// Default returns the metrics registered on the default registerer.
// Registration happens once; later calls return the same instance.
func Default() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

// RuleFinished implements engine.Stats.
func (m *Metrics) RuleFinished(status engine.Status) {
	m.RulesTotal.WithLabelValues(string(status)).Inc()
}

// LawFinished implements engine.Stats.
func (m *Metrics) LawFinished(name string, status engine.Status, elapsed time.Duration) {
	m.LawsTotal.WithLabelValues(name, string(status)).Inc()
	m.LawDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}
