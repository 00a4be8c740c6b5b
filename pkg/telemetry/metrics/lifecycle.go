package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"truthcore-hq/atlas/pkg/config"
)

// LifecycleMetrics tracks version and policy-text state transitions.
//
// Metrics:
//   - atlas_truth_mvt_transitions_total: MVT version operations by action and result
//   - atlas_truth_policy_text_transitions_total: policy-text operations by action and result
//   - atlas_truth_approval_contract_failures_total: approval contract failures by reason
type LifecycleMetrics struct {
	mvtTransitions      *prometheus.CounterVec
	textTransitions     *prometheus.CounterVec
	contractFailures    *prometheus.CounterVec
	activeVersionsGauge *prometheus.GaugeVec
}

// NewLifecycleMetrics creates and registers lifecycle metrics.
func NewLifecycleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LifecycleMetrics {
	lm := &LifecycleMetrics{
		mvtTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "mvt_transitions_total",
				Help:      "Truth version operations by action and result",
			},
			[]string{"action", "result"},
		),

		textTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_text_transitions_total",
				Help:      "Policy text version operations by action and result",
			},
			[]string{"action", "result"},
		),

		contractFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "approval_contract_failures_total",
				Help:      "Approval contract failures by reason",
			},
			[]string{"reason"},
		),

		activeVersionsGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_versions",
				Help:      "Active truth versions by vertical",
			},
			[]string{"vertical"},
		),
	}

	registry.MustRegister(
		lm.mvtTransitions,
		lm.textTransitions,
		lm.contractFailures,
		lm.activeVersionsGauge,
	)

	return lm
}

// RecordMVTTransition records a truth version operation. Action is one
// of "create", "activate", "deprecate", "update_icp"; result is
// "success" or "failure".
func (lm *LifecycleMetrics) RecordMVTTransition(action, result string) {
	lm.mvtTransitions.WithLabelValues(action, result).Inc()
}

// RecordTextTransition records a policy-text operation. Action is one of
// "save", "interpret", "approve", "reject", "deprecate".
func (lm *LifecycleMetrics) RecordTextTransition(action, result string) {
	lm.textTransitions.WithLabelValues(action, result).Inc()
}

// RecordContractFailure records an approval contract failure. Reason is
// "lint_failed" or "hash_mismatch".
func (lm *LifecycleMetrics) RecordContractFailure(reason string) {
	lm.contractFailures.WithLabelValues(reason).Inc()
}

// SetActiveVersions sets the active-version gauge for a vertical.
func (lm *LifecycleMetrics) SetActiveVersions(vertical string, count int) {
	lm.activeVersionsGauge.WithLabelValues(vertical).Set(float64(count))
}
