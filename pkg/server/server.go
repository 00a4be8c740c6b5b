package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"truthcore-hq/atlas/pkg/config"
	"truthcore-hq/atlas/pkg/server/handlers"
	"truthcore-hq/atlas/pkg/server/middleware"
	"truthcore-hq/atlas/pkg/telemetry/health"
	"truthcore-hq/atlas/pkg/telemetry/metrics"
	"truthcore-hq/atlas/pkg/truth/resolver"
	"truthcore-hq/atlas/pkg/truth/store"
	"truthcore-hq/atlas/pkg/truth/version"
)

// Server is the HTTP server for the truth engine API.
type Server struct {
	config    *config.ServerConfig
	store     store.Store
	api       *handlers.API
	collector *metrics.Collector
	checker   *health.Checker
	logger    *slog.Logger

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a Server. The collector may be nil when metrics are
// disabled; /metrics is then not routed.
func New(cfg *config.ServerConfig, st store.Store, res *resolver.Resolver, mgr *version.Manager, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	checker := health.New(5 * time.Second)
	checker.RegisterCheck("store", func(ctx context.Context) error {
		return st.Ping(ctx)
	})

	return &Server{
		config:       cfg,
		store:        st,
		api:          handlers.New(res, mgr, collector, logger),
		collector:    collector,
		checker:      checker,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// HealthChecker returns the server's readiness checker so callers can
// register additional component checks before Start.
func (s *Server) HealthChecker() *health.Checker {
	return s.checker
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting truth engine server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Handler returns the fully-routed HTTP handler with the middleware
// chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/resolve", s.api.Resolve)

	mux.HandleFunc("POST /v1/verticals", s.api.CreateVertical)
	mux.HandleFunc("POST /v1/verticals/{id}/sub-verticals", s.api.CreateSubVertical)

	mux.HandleFunc("POST /v1/sub-verticals/{id}/mvt-versions", s.api.CreateMVTVersion)
	mux.HandleFunc("PATCH /v1/sub-verticals/{id}/mvt", s.api.UpdateMVTVersion)
	mux.HandleFunc("POST /v1/mvt-versions/{id}/activate", s.api.ActivateMVTVersion)
	mux.HandleFunc("POST /v1/mvt-versions/{id}/deprecate", s.api.DeprecateMVTVersion)
	mux.HandleFunc("PATCH /v1/sub-verticals/{id}/icp", s.api.UpdateICP)

	mux.HandleFunc("PUT /v1/sub-verticals/{id}/policy-text", s.api.SavePolicySource)
	mux.HandleFunc("POST /v1/sub-verticals/{id}/policy-text/interpret", s.api.InterpretPolicySource)
	mux.HandleFunc("POST /v1/policy-text-versions/{id}/approve", s.api.ApprovePolicyText)
	mux.HandleFunc("POST /v1/policy-text-versions/{id}/reject", s.api.RejectPolicyText)
	mux.HandleFunc("POST /v1/policy-text-versions/{id}/deprecate", s.api.DeprecatePolicyText)

	mux.HandleFunc("POST /v1/sub-verticals/{id}/personas", s.api.CreatePersona)
	mux.HandleFunc("POST /v1/personas/{id}/policies", s.api.CreatePersonaPolicy)
	mux.HandleFunc("POST /v1/persona-policies/{id}/activate", s.api.ActivatePersonaPolicy)

	mux.HandleFunc("GET /healthz", s.checker.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.checker.ReadinessHandler())
	if s.collector != nil {
		mux.Handle("GET /metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Actor(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return handler
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
