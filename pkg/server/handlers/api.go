package handlers

import (
	"log/slog"

	"truthcore-hq/atlas/pkg/telemetry/metrics"
	"truthcore-hq/atlas/pkg/truth/resolver"
	"truthcore-hq/atlas/pkg/truth/version"
)

// API bundles the domain services behind the HTTP surface.
type API struct {
	resolver  *resolver.Resolver
	manager   *version.Manager
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates the API handler set. The collector may be nil when
// metrics are disabled.
func New(res *resolver.Resolver, mgr *version.Manager, collector *metrics.Collector, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		resolver:  res,
		manager:   mgr,
		collector: collector,
		logger:    logger.With("component", "server.handlers"),
	}
}
