package service

import "github.com/prometheus/client_golang/prometheus"

// CheckMetrics holds the Prometheus metrics for check runs.
type CheckMetrics struct {
	runsTotal     prometheus.Counter
	probeFailures *prometheus.CounterVec
}

// NewCheckMetrics creates and registers the check metrics.
func NewCheckMetrics(reg prometheus.Registerer) (*CheckMetrics, error) {
	m := &CheckMetrics{
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schemawatch_check_runs_total",
			Help: "Total number of check runs executed.",
		}),
		probeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemawatch_probe_failures_total",
				Help: "Total number of failed table probes.",
			},
			[]string{"table"},
		),
	}

	if err := reg.Register(m.runsTotal); err != nil {
		return nil, err
	}
	if err := reg.Register(m.probeFailures); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *CheckMetrics) observeRun() {
	if m == nil {
		return
	}
	m.runsTotal.Inc()
}

func (m *CheckMetrics) observeProbeFailure(table string) {
	if m == nil {
		return
	}
	m.probeFailures.WithLabelValues(table).Inc()
}
