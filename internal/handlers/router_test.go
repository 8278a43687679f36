package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRouterHealthz(t *testing.T) {
	started := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	now := started.Add(90 * time.Second)
	r := NewRouter(WithHealthHandlers(NewHealthHandlers(
		WithHealthBuildInfo(BuildInfo{Version: "1.4.0", Environment: "test", StartedAt: started}),
		WithHealthClock(func() time.Time { return now }),
	)))

	rec := doRequest(t, r, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["status"] != "ok" || payload["version"] != "1.4.0" {
		t.Fatalf("payload = %v", payload)
	}
	if payload["uptime"] != "1m30s" {
		t.Fatalf("uptime = %v", payload["uptime"])
	}
}

func TestRouterReadyzReportsFailingProbe(t *testing.T) {
	r := NewRouter(WithHealthHandlers(NewHealthHandlers(
		WithReadinessCheck("redis", func(context.Context) error { return nil }),
		WithReadinessCheck("commerce-api", func(context.Context) error { return errors.New("connection refused") }),
	)))

	rec := doRequest(t, r, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["status"] != "degraded" {
		t.Fatalf("status = %v", payload["status"])
	}
	checks, ok := payload["checks"].(map[string]any)
	if !ok || checks["redis"] != "ok" || checks["commerce-api"] != "connection refused" {
		t.Fatalf("checks = %v", payload["checks"])
	}
}

func TestRouterNotFoundEnvelope(t *testing.T) {
	r := NewRouter()

	rec := doRequest(t, r, http.MethodGet, "/api/v1/nope/at/all", "", "")
	wantErrorCode(t, rec, http.StatusNotFound, "route_not_found")
}

func TestRouterMethodNotAllowedEnvelope(t *testing.T) {
	r := NewRouter(WithCartRoutes(NewCartHandlers(newMemorySessions()).Routes))

	rec := doRequest(t, r, http.MethodPatch, "/api/v1/cart", "sess-1", "{}")
	wantErrorCode(t, rec, http.StatusMethodNotAllowed, "method_not_allowed")
}

func TestRouterUnconfiguredGroupIsNotImplemented(t *testing.T) {
	r := NewRouter()

	rec := doRequest(t, r, http.MethodGet, "/api/v1/settings", "", "")
	wantErrorCode(t, rec, http.StatusNotImplemented, "not_implemented")
}

func TestRouterMountsConfiguredGroups(t *testing.T) {
	r := NewRouter(
		WithCartRoutes(NewCartHandlers(newMemorySessions()).Routes),
		WithSettingsRoutes(NewSettingsHandlers(&stubSettings{}).Routes),
		WithPreOrderRoutes(NewPreOrderHandlers(&stubPreOrder{}).Routes),
		WithZoneRoutes(NewZoneHandlers(&stubZones{}).Routes),
	)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/cart", "sess-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cart status = %d", rec.Code)
	}
	rec = doRequest(t, r, http.MethodGet, "/api/v1/settings", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d", rec.Code)
	}
	rec = doRequest(t, r, http.MethodGet, "/api/v1/preorder/dates", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("preorder status = %d", rec.Code)
	}
	rec = doRequest(t, r, http.MethodGet, "/api/v1/delivery-zones", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("zones status = %d", rec.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	served := false
	r := NewRouter(WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		served = true
		w.WriteHeader(http.StatusOK)
	})))

	rec := doRequest(t, r, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !served {
		t.Fatalf("metrics status = %d, served = %v", rec.Code, served)
	}
}
