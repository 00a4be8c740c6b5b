// Package metrics provides Prometheus instrumentation for the truth
// engine.
//
// The Collector owns a prometheus.Registry and pre-registers every
// metric family at startup:
//
//   - resolution metrics: outcome counters and duration histograms for
//     the resolve path, plus blocker counters for incomplete configs
//   - lifecycle metrics: version and policy-text transition counters
//     and approval contract failures
//   - compiler metrics: compilation counters by source format and an
//     extraction confidence histogram
//   - integrity metrics: sweep runs and finding counters by check
//
// A cardinality limiter caps the number of unique label sets recorded
// for vertical/sub-vertical labels; overflow aggregates into "other".
package metrics
