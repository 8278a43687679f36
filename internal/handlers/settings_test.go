package handlers

import (
	"net/http"
	"testing"

	domain "github.com/warungkita/api/internal/domain"
)

func TestSettingsRead(t *testing.T) {
	settings := &stubSettings{value: domain.StoreSettings{
		MaxPreOrderDays: 14,
		Holidays:        []string{"2025-06-06"},
	}}
	h := mountRoutes("/settings", NewSettingsHandlers(settings).Routes)

	rec := doRequest(t, h, http.MethodGet, "/settings", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %q)", rec.Code, rec.Body.String())
	}
	payload := decodeEnvelope(t, rec)
	if payload["maxPreOrderDays"] != float64(14) {
		t.Fatalf("maxPreOrderDays = %v", payload["maxPreOrderDays"])
	}
	if payload["weekdayHours"] != domain.DefaultWeekdayHours {
		t.Fatalf("weekdayHours = %v", payload["weekdayHours"])
	}
	holidays, ok := payload["holidays"].([]any)
	if !ok || len(holidays) != 1 || holidays[0] != "2025-06-06" {
		t.Fatalf("holidays = %v", payload["holidays"])
	}
}

func TestSettingsReadAppliesDefaults(t *testing.T) {
	h := mountRoutes("/settings", NewSettingsHandlers(&stubSettings{}).Routes)

	rec := doRequest(t, h, http.MethodGet, "/settings", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["maxPreOrderDays"] != float64(domain.DefaultMaxPreOrderDays) {
		t.Fatalf("maxPreOrderDays = %v", payload["maxPreOrderDays"])
	}
	if payload["taxRateBps"] != float64(domain.DefaultTaxRateBps) {
		t.Fatalf("taxRateBps = %v", payload["taxRateBps"])
	}
	holidays, ok := payload["holidays"].([]any)
	if !ok || len(holidays) != 0 {
		t.Fatalf("holidays = %v, want empty list", payload["holidays"])
	}
}
