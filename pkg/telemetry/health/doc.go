// Package health provides liveness and readiness probes for the truth
// engine.
//
// Liveness reports only that the process is running. Readiness runs all
// registered component checks (the truth store ping, the policy source
// watcher) concurrently with a per-check timeout and aggregates them:
// any unhealthy component makes the whole system degraded and the
// readiness endpoint returns 503.
package health
