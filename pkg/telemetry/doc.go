// Package telemetry groups the observability subpackages of the truth
// engine.
//
// # Components
//
//   - logging: structured slog logging with redaction of sensitive
//     values in audit payloads
//   - metrics: Prometheus metrics for resolutions, version lifecycle
//     transitions, policy compilation, and integrity sweeps
//   - health: liveness and readiness probes
//
// # Usage
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("store", func(ctx context.Context) error {
//		return store.Ping(ctx)
//	})
package telemetry
