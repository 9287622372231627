package repository

import "github.com/prometheus/client_golang/prometheus"

// Metrics records synchronization outcomes. A nil *Metrics records nothing.
type Metrics struct {
	syncTotal    *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
}

// NewMetrics creates the synchronizer metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		syncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasetrain_repository_sync_total",
				Help: "Number of mirror synchronizations by project, action and outcome.",
			},
			[]string{"project", "action", "outcome"},
		),
		syncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "releasetrain_repository_sync_duration_seconds",
				Help:    "Time taken to clone or fetch a mirror, retries included.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.syncTotal, m.syncDuration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observe(o ProjectOutcome) {
	if m == nil {
		return
	}
	outcome := "success"
	if o.Err != nil {
		outcome = "failure"
	}
	m.syncTotal.WithLabelValues(o.Project.Key(), o.Action.String(), outcome).Inc()
	if o.Action != ActionSkipped {
		m.syncDuration.WithLabelValues(o.Action.String()).Observe(o.Duration.Seconds())
	}
}

// SyncTotal exposes the outcome counter, mainly for tests.
func (m *Metrics) SyncTotal() *prometheus.CounterVec { return m.syncTotal }

// SyncDuration exposes the duration histogram, mainly for tests.
func (m *Metrics) SyncDuration() *prometheus.HistogramVec { return m.syncDuration }

