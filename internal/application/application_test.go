package application

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/meetspot/meetspot/internal/config"
)

func TestResolveRuntimePort(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("unset uses default", func(t *testing.T) {
		t.Setenv("PORT", "")
		if rt := ResolveRuntime(logger); rt.Port != DefaultPort {
			t.Fatalf("expected default port %d, got %d", DefaultPort, rt.Port)
		}
	})

	t.Run("integer value is used", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		if rt := ResolveRuntime(logger); rt.Port != 8080 {
			t.Fatalf("expected port 8080, got %d", rt.Port)
		}
	})

	t.Run("non-integer falls back to default", func(t *testing.T) {
		t.Setenv("PORT", "eleven")
		if rt := ResolveRuntime(logger); rt.Port != DefaultPort {
			t.Fatalf("expected fallback to %d, got %d", DefaultPort, rt.Port)
		}
	})

	t.Run("out of range falls back to default", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		if rt := ResolveRuntime(logger); rt.Port != DefaultPort {
			t.Fatalf("expected fallback to %d, got %d", DefaultPort, rt.Port)
		}
	})
}

func TestResolveRuntimeProductionMode(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Setenv("PORT", "")
	if rt := ResolveRuntime(logger); rt.Production {
		t.Fatalf("expected local mode without platform variable")
	}

	// Presence alone marks production, even with an empty value.
	t.Setenv("RAILWAY_ENVIRONMENT", "")
	if rt := ResolveRuntime(logger); !rt.Production {
		t.Fatalf("expected production mode when platform variable is present")
	}
}

func TestNewInitializesDependencies(t *testing.T) {
	t.Setenv("AMAP_API_KEY", "test-key")
	logger := zaptest.NewLogger(t)
	manager := config.NewManager()

	app, err := New(manager, Runtime{Port: 8085}, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if app.server == nil || app.router == nil || app.handler == nil || app.places == nil {
		t.Fatalf("expected server, router, handler, and map client to be initialized")
	}
	if app.server.Addr != ":8085" {
		t.Fatalf("expected address :8085, got %s", app.server.Addr)
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestBannerVariesWithMode(t *testing.T) {
	app := &App{runtime: Runtime{Port: 11024, Production: true}}
	joined := strings.Join(app.banner(), "\n")
	if !strings.Contains(joined, "production") || !strings.Contains(joined, "11024") {
		t.Fatalf("unexpected production banner: %s", joined)
	}

	app.runtime.Production = false
	joined = strings.Join(app.banner(), "\n")
	if !strings.Contains(joined, "development") || !strings.Contains(joined, "http://localhost:11024") {
		t.Fatalf("unexpected development banner: %s", joined)
	}
}

func TestBuildRootHandler(t *testing.T) {
	apiInvoked := false
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Fatalf("unexpected path passed to API handler: %s", r.URL.Path)
		}
		apiInvoked = true
		w.WriteHeader(http.StatusNoContent)
	})

	handler, err := BuildRootHandler(apiHandler)
	if err != nil {
		t.Fatalf("BuildRootHandler returned error: %v", err)
	}

	t.Run("serves index", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") == "" {
			t.Fatalf("expected Content-Type header for index page")
		}
	})

	t.Run("returns not found for unknown paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("forwards api traffic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if !apiInvoked {
			t.Fatalf("expected API handler to be invoked")
		}
	})
}

func TestResolveProjectPathFindsGoMod(t *testing.T) {
	path, err := resolveProjectPath("go.mod")
	if err != nil {
		t.Fatalf("resolveProjectPath returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected go.mod to exist at %s: %v", path, err)
	}
}

func TestResolveProjectPathUnknownTarget(t *testing.T) {
	if _, err := resolveProjectPath("definitely-not-a-real-file"); err == nil {
		t.Fatalf("expected error for missing resource")
	}
}
