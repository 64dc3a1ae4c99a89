package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/greenlink-logistics/dispatch-console/pkg/config"
)

func testDeps() Deps {
	return Deps{
		Config: &config.Config{
			App:     config.AppConfig{Env: "dev", Port: "8090"},
			Session: config.SessionConfig{CookieName: "gl_token"},
		},
		Metrics: prometheus.NewRegistry(),
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-GreenLink-Env") != "dev" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-GreenLink-Env"))
	}
}

func TestMetricsEndpointIsWired(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestAPIRoutesRequireCredentials(t *testing.T) {
	router := NewRouter(testDeps())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/orders"},
		{http.MethodPost, "/api/routes/optimize"},
		{http.MethodGet, "/api/driver/route"},
		{http.MethodGet, "/api/account"},
	}

	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a generated request id header")
	}
}
