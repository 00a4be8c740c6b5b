package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"truthcore-hq/atlas/pkg/config"
)

// CompilerMetrics tracks policy compilation.
//
// Metrics:
//   - atlas_truth_compilations_total: compilations by source format and result
//   - atlas_truth_extraction_confidence: confidence histogram for free-text extraction
type CompilerMetrics struct {
	compilationsTotal    *prometheus.CounterVec
	extractionConfidence prometheus.Histogram
}

// NewCompilerMetrics creates and registers compiler metrics.
func NewCompilerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompilerMetrics {
	cm := &CompilerMetrics{
		compilationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compilations_total",
				Help:      "Policy compilations by source format and result",
			},
			[]string{"format", "result"},
		),

		extractionConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "extraction_confidence",
				Help:      "Confidence scores reported by free-text extraction",
				Buckets:   []float64{0.1, 0.25, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
			},
		),
	}

	registry.MustRegister(
		cm.compilationsTotal,
		cm.extractionConfidence,
	)

	return cm
}

// RecordCompilation records a compilation attempt. Format is "text" or
// "dsl"; result is "success" or "failure".
func (cm *CompilerMetrics) RecordCompilation(format, result string) {
	cm.compilationsTotal.WithLabelValues(format, result).Inc()
}

// RecordConfidence records the confidence of a free-text extraction.
func (cm *CompilerMetrics) RecordConfidence(confidence float64) {
	cm.extractionConfidence.Observe(confidence)
}
