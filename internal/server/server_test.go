package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carmenjuyo/forecast-converter/internal/config"
)

func TestServer_RoutesAndCORS(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()

	srv, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	if srv.GetStore() == nil {
		t.Fatalf("audit store should be enabled by default")
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status: %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/extract", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status: %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("missing CORS header: %q", got)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status endpoint: %d body=%s", w.Code, w.Body.String())
	}
}

func TestServer_AuditDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.AuditLog = false

	srv, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if srv.GetStore() != nil {
		t.Fatalf("store must be nil when audit log is disabled")
	}
}
