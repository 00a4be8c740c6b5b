package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"truthcore-hq/atlas/pkg/config"
)

// ResolveMetrics tracks the resolution cascade.
//
// Metrics:
//   - atlas_truth_resolutions_total: resolutions by vertical, sub-vertical, outcome
//   - atlas_truth_resolve_duration_seconds: resolution latency histogram
//   - atlas_truth_resolve_blockers_total: blocked resolutions by blocker
type ResolveMetrics struct {
	resolutionsTotal *prometheus.CounterVec
	resolveDuration  *prometheus.HistogramVec
	blockersTotal    *prometheus.CounterVec
}

// NewResolveMetrics creates and registers resolution metrics.
func NewResolveMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolveMetrics {
	rm := &ResolveMetrics{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolutions_total",
				Help:      "Total resolution requests by outcome",
			},
			[]string{"vertical", "sub_vertical", "outcome"},
		),

		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolve_duration_seconds",
				Help:      "Duration of resolution requests in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"vertical"},
		),

		blockersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolve_blockers_total",
				Help:      "Resolutions blocked by an incomplete configuration, by blocker",
			},
			[]string{"blocker"},
		),
	}

	registry.MustRegister(
		rm.resolutionsTotal,
		rm.resolveDuration,
		rm.blockersTotal,
	)

	return rm
}

// RecordResolution records a completed resolution. Outcome is "resolved"
// for success or the failure code for a blocked resolution.
func (rm *ResolveMetrics) RecordResolution(vertical, subVertical, outcome string, duration time.Duration) {
	rm.resolutionsTotal.WithLabelValues(vertical, subVertical, outcome).Inc()
	rm.resolveDuration.WithLabelValues(vertical).Observe(duration.Seconds())
}

// RecordBlocker records the blocker behind an incomplete-config failure.
func (rm *ResolveMetrics) RecordBlocker(blocker string) {
	rm.blockersTotal.WithLabelValues(blocker).Inc()
}
