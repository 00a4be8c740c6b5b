package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"truthcore-hq/atlas/pkg/config"
)

// IntegrityMetrics tracks the scheduled integrity sweep.
//
// Metrics:
//   - atlas_truth_integrity_sweeps_total: sweep runs by result
//   - atlas_truth_integrity_findings_total: findings by check
type IntegrityMetrics struct {
	sweepsTotal   *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
}

// NewIntegrityMetrics creates and registers integrity metrics.
func NewIntegrityMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *IntegrityMetrics {
	im := &IntegrityMetrics{
		sweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "integrity_sweeps_total",
				Help:      "Integrity sweep runs by result",
			},
			[]string{"result"},
		),

		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "integrity_findings_total",
				Help:      "Integrity findings by check",
			},
			[]string{"check"},
		),
	}

	registry.MustRegister(
		im.sweepsTotal,
		im.findingsTotal,
	)

	return im
}

// RecordSweep records a completed sweep. Result is "clean", "findings",
// or "error".
func (im *IntegrityMetrics) RecordSweep(result string) {
	im.sweepsTotal.WithLabelValues(result).Inc()
}

// RecordFinding records one finding from a sweep.
func (im *IntegrityMetrics) RecordFinding(check string) {
	im.findingsTotal.WithLabelValues(check).Inc()
}
