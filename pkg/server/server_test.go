package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"truthcore-hq/atlas/pkg/config"
	"truthcore-hq/atlas/pkg/server/middleware"
	"truthcore-hq/atlas/pkg/telemetry/metrics"
	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/resolver"
	"truthcore-hq/atlas/pkg/truth/store"
	"truthcore-hq/atlas/pkg/truth/version"
)

func newTestServer(t *testing.T, collector *metrics.Collector) *Server {
	t.Helper()
	st := store.NewMemory()
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	mgr := version.NewManager(st, nil, logger)
	res := resolver.New(st, logger)

	cfg := &config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: time.Second,
	}
	return New(cfg, st, res, mgr, collector, logger)
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestRequestIDOnEveryResponse(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response missing request ID header")
	}
}

func TestWriteRouteRequiresActorHeader(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	body := `{"key":"banking","name":"Banking","region_scope":["UAE"]}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/verticals", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope["error"] != string(truth.CodeMissingActor) {
		t.Errorf("error = %v, want %v", envelope["error"], truth.CodeMissingActor)
	}
}

func TestWriteRouteWithActor(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	body := `{"key":"banking","name":"Banking","region_scope":["UAE"]}`
	req := httptest.NewRequest("POST", "/v1/verticals", strings.NewReader(body))
	req.Header.Set(middleware.ActorHeader, "ops@example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestResolveRoute(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/resolve?vertical=missing&subVertical=x&region=UAE", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMetricsRouteOnlyWithCollector(t *testing.T) {
	withoutMetrics := newTestServer(t, nil).Handler()
	rec := httptest.NewRecorder()
	withoutMetrics.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("without collector: status = %d, want 404", rec.Code)
	}

	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "atlas", Subsystem: "truth"}, nil)
	withMetrics := newTestServer(t, collector).Handler()
	rec = httptest.NewRecorder()
	withMetrics.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("with collector: status = %d, want 200", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIsRunning(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.IsRunning() {
		t.Error("server should not report running before Start")
	}
}

func TestHealthCheckerExposed(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.HealthChecker() == nil {
		t.Fatal("HealthChecker() returned nil")
	}
	if srv.HealthChecker().CheckCount() == 0 {
		t.Error("store check should be registered")
	}
}
