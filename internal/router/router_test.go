package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ip-location-gateway/internal/background"
	"ip-location-gateway/internal/cache"
	"ip-location-gateway/internal/handler"
	"ip-location-gateway/internal/limiter"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/metrics"
	"ip-location-gateway/internal/service"
	"ip-location-gateway/internal/store"
	"ip-location-gateway/internal/upstream"
)

// promauto registers on the global registry, so the collector set is
// created once for the whole test binary.
var testMetrics = metrics.New()

func newTestRouter(allowRequests bool) (chi.Router, *upstream.MockClient) {
	mockStore := store.NewMockStore()
	tasks := background.New(0)
	mockUpstream := upstream.NewMockClient()
	log := logger.New(logger.Config{Level: "disabled"})

	c := cache.New(mockStore, tasks, 300*time.Second, nil, log)
	svc := service.NewGeoService(c, mockUpstream, 10, "test-provider", nil, log)
	h := handler.NewGeoHandler(svc, log)

	return Setup(h, limiter.NewMockLimiter(allowRequests), testMetrics, log), mockUpstream
}

// TestRouter_UnknownPath tests the 404 with CORS headers
func TestRouter_UnknownPath(t *testing.T) {
	r, _ := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers on 404 responses")
	}
}

// TestRouter_PreflightAnyPath tests that OPTIONS is answered everywhere
func TestRouter_PreflightAnyPath(t *testing.T) {
	r, _ := newTestRouter(true)

	for _, path := range []string{"/api/ip-location", "/api/batch-location", "/api/client-ip", "/anything"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("OPTIONS %s: expected status 200, got %d", path, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("OPTIONS %s: expected empty body", path)
		}
	}
}

// TestRouter_RateLimitGatesQueryRoutes tests that only the query routes are gated
func TestRouter_RateLimitGatesQueryRoutes(t *testing.T) {
	r, mockUpstream := newTestRouter(false) // limiter denies everything
	mockUpstream.SetSuccess("203.0.113.9", "Japan", "Tokyo")

	// The single-query route is rejected...
	req := httptest.NewRequest(http.MethodGet, "/api/ip-location?ip=8.8.8.8", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 on /api/ip-location, got %d", rec.Code)
	}

	// ...but the client-ip route bypasses admission entirely.
	req = httptest.NewRequest(http.MethodGet, "/api/client-ip", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected /api/client-ip to bypass rate limiting, got %d", rec.Code)
	}
}

// TestRouter_MethodNotAllowed tests the 405 on a wrong method
func TestRouter_MethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/api/batch-location", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

// TestRouter_Health tests the liveness endpoint
func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("expected body 'OK', got %q", rec.Body.String())
	}
}
