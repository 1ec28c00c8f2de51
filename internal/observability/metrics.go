package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pypictl"

// RunStats summarizes one prepared run.
type RunStats struct {
	GeneratedAt  time.Time
	ExcludeRules int
	Init         bool
	MirrorAlias  bool
}

type runMetrics struct {
	generated    prometheus.Gauge
	excludeRules prometheus.Gauge
	init         prometheus.Gauge
	mirrorAlias  prometheus.Gauge
}

func newRunMetrics() runMetrics {
	return runMetrics{
		generated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_generated_timestamp_seconds",
			Help:      "Unix time the shadowmire config was last generated.",
		}),
		excludeRules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exclude_rules",
			Help:      "Number of exclude rules in the generated config.",
		}),
		init: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "init",
			Help:      "1 when the run initialized a fresh data directory.",
		}),
		mirrorAlias: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mirror_alias",
			Help:      "1 when package files are fetched through a mirror alias.",
		}),
	}
}

func (m runMetrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.generated, m.excludeRules, m.init, m.mirrorAlias} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m runMetrics) record(stats RunStats) {
	m.generated.Set(float64(stats.GeneratedAt.Unix()))
	m.excludeRules.Set(float64(stats.ExcludeRules))
	m.init.Set(boolGauge(stats.Init))
	m.mirrorAlias.Set(boolGauge(stats.MirrorAlias))
}

// WriteRunMetrics writes stats to path in the node_exporter textfile format.
// Each call uses its own registry, so the file never carries earlier runs.
func WriteRunMetrics(path string, stats RunStats) error {
	reg := prometheus.NewRegistry()
	m := newRunMetrics()
	if err := m.register(reg); err != nil {
		return fmt.Errorf("register run metrics: %w", err)
	}
	m.record(stats)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write run metrics (%s): %w", path, err)
	}
	return nil
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
