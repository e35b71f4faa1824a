package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-run scheduler statistics in a private registry,
// so concurrent runs (and tests) never share counters.
//
// Thread Safety: Safe for concurrent use by rollouts.
type Metrics struct {
	Registry *prometheus.Registry

	rollouts      prometheus.Counter
	events        prometheus.Counter
	duration      prometheus.Histogram
	stops         *prometheus.CounterVec
	bestLastCycle prometheus.Gauge
}

// NewMetrics creates the scheduler metrics in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		rollouts: f.NewCounter(prometheus.CounterOpts{
			Name: "krpsim_rollouts_total",
			Help: "Number of completed scheduler rollouts.",
		}),
		events: f.NewCounter(prometheus.CounterOpts{
			Name: "krpsim_events_started_total",
			Help: "Number of process starts across all rollouts.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "krpsim_rollout_duration_seconds",
			Help:    "Wall-clock duration of a single rollout.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		stops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "krpsim_rollout_stops_total",
			Help: "Rollout terminations by reason.",
		}, []string{"reason"}),
		bestLastCycle: f.NewGauge(prometheus.GaugeOpts{
			Name: "krpsim_best_last_cycle",
			Help: "Last cycle of the best trace found.",
		}),
	}
}

func (m *Metrics) observeRollout(res *rolloutResult) {
	m.rollouts.Inc()
	m.events.Add(float64(len(res.trace)))
	m.duration.Observe(res.elapsed.Seconds())
	m.stops.WithLabelValues(string(res.reason)).Inc()
}

func (m *Metrics) observeBest(res *Result) {
	m.bestLastCycle.Set(float64(res.LastCycle))
}

// WriteTextfile writes the current metrics in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
