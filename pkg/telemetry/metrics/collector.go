package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"truthcore-hq/atlas/pkg/config"
)

// Collector orchestrates all Prometheus metrics for the truth engine.
// It owns the registry and provides a unified recording interface so
// callers never touch metric families directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	resolveMetrics   *ResolveMetrics
	lifecycleMetrics *LifecycleMetrics
	compilerMetrics  *CompilerMetrics
	integrityMetrics *IntegrityMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector with the given configuration
// and registry. If registry is nil a fresh one is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.resolveMetrics = NewResolveMetrics(cfg, registry)
	c.lifecycleMetrics = NewLifecycleMetrics(cfg, registry)
	c.compilerMetrics = NewCompilerMetrics(cfg, registry)
	c.integrityMetrics = NewIntegrityMetrics(cfg, registry)

	return c
}

// RecordResolution records a resolution attempt. Outcome is "resolved"
// or the failure code. The (vertical, sub_vertical) label pair is
// subject to the cardinality limit; overflow is folded into "other".
func (c *Collector) RecordResolution(vertical, subVertical, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	labelSet := fmt.Sprintf("resolve:%s:%s", vertical, subVertical)
	if !c.cardinalityLimiter.Allow(labelSet) {
		vertical = "other"
		subVertical = "other"
	}
	c.resolveMetrics.RecordResolution(vertical, subVertical, outcome, duration)
}

// RecordBlocker records the blocker behind a blocked resolution.
func (c *Collector) RecordBlocker(blocker string) {
	if !c.config.Enabled {
		return
	}
	c.resolveMetrics.RecordBlocker(blocker)
}

// RecordMVTTransition records a truth version operation.
func (c *Collector) RecordMVTTransition(action, result string) {
	if !c.config.Enabled {
		return
	}
	c.lifecycleMetrics.RecordMVTTransition(action, result)
}

// RecordTextTransition records a policy-text operation.
func (c *Collector) RecordTextTransition(action, result string) {
	if !c.config.Enabled {
		return
	}
	c.lifecycleMetrics.RecordTextTransition(action, result)
}

// RecordContractFailure records an approval contract failure.
func (c *Collector) RecordContractFailure(reason string) {
	if !c.config.Enabled {
		return
	}
	c.lifecycleMetrics.RecordContractFailure(reason)
}

// RecordCompilation records a policy compilation attempt.
func (c *Collector) RecordCompilation(format, result string) {
	if !c.config.Enabled {
		return
	}
	c.compilerMetrics.RecordCompilation(format, result)
}

// RecordConfidence records a free-text extraction confidence score.
func (c *Collector) RecordConfidence(confidence float64) {
	if !c.config.Enabled {
		return
	}
	c.compilerMetrics.RecordConfidence(confidence)
}

// RecordSweep records an integrity sweep run.
func (c *Collector) RecordSweep(result string) {
	if !c.config.Enabled {
		return
	}
	c.integrityMetrics.RecordSweep(result)
}

// RecordFinding records an integrity finding.
func (c *Collector) RecordFinding(check string) {
	if !c.config.Enabled {
		return
	}
	c.integrityMetrics.RecordFinding(check)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of unique label sets recorded.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter with the given maximum.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether the label set may be recorded. Known label sets
// are always allowed; new ones are allowed until the limit is reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
