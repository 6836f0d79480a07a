package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notiva/notiva/internal/core/engine"
)

func TestRateLimitStatsRequiresAccess(t *testing.T) {
	api := &API{Gate: engine.NewGate(engine.NewLimiter(nil), nil, nil), AdminToken: "secreto"}
	router := testRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/ratelimit/stats", nil)
	req.Header.Set("User-Agent", browserUA)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestRateLimitStatsAcceptsAdminToken(t *testing.T) {
	gate := engine.NewGate(engine.NewLimiter(nil), nil, nil)
	gate.Check("203.0.113.7", "search", browserUA)

	api := &API{Gate: gate, AdminToken: "secreto"}
	router := testRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/ratelimit/stats", nil)
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set(AdminTokenHeader, "secreto")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp rateLimitStatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := resp.Classes["search"]; !ok {
		t.Fatal("expected search class summary")
	}
	if len(resp.Entries) != 1 {
		t.Fatalf("expected one limiter entry, got %d", len(resp.Entries))
	}
}

func TestRateLimitStatsOpenInDebugMode(t *testing.T) {
	api := &API{Gate: engine.NewGate(engine.NewLimiter(nil), nil, nil), Debug: true}
	router := testRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/ratelimit/stats", nil)
	req.Header.Set("User-Agent", browserUA)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRateLimitStatsWithoutGate(t *testing.T) {
	api := &API{Debug: true}
	router := testRouter(api)

	req := httptest.NewRequest(http.MethodGet, "/api/ratelimit/stats", nil)
	req.Header.Set("User-Agent", browserUA)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
