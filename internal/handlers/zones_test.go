package handlers

import (
	"context"
	"net/http"
	"testing"

	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/services"
)

func TestZoneList(t *testing.T) {
	zones := &stubZones{
		listFn: func(context.Context) []domain.DeliveryZone {
			return []domain.DeliveryZone{
				{ID: "z-1", Name: "Kemang", DeliveryFee: 10000, EstimatedTimeMinutes: 30},
				{ID: "z-2", Name: "Tebet", DeliveryFee: 15000, EstimatedTimeMinutes: 45},
			}
		},
	}
	h := mountRoutes("/delivery-zones", NewZoneHandlers(zones).Routes)

	rec := doRequest(t, h, http.MethodGet, "/delivery-zones", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %q)", rec.Code, rec.Body.String())
	}
	payload := decodeEnvelope(t, rec)
	list, ok := payload["zones"].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("zones = %v", payload["zones"])
	}
	first, _ := list[0].(map[string]any)
	if first["id"] != "z-1" || first["deliveryFee"] != float64(10000) {
		t.Fatalf("first zone = %v", first)
	}
}

func TestZoneListDegradesToEmpty(t *testing.T) {
	h := mountRoutes("/delivery-zones", NewZoneHandlers(&stubZones{}).Routes)

	rec := doRequest(t, h, http.MethodGet, "/delivery-zones", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	list, ok := payload["zones"].([]any)
	if !ok || len(list) != 0 {
		t.Fatalf("zones = %v, want empty list", payload["zones"])
	}
}

func TestZoneDetect(t *testing.T) {
	var got services.DetectZoneCommand
	zones := &stubZones{
		detectFn: func(_ context.Context, cmd services.DetectZoneCommand) (domain.DeliveryZone, error) {
			got = cmd
			return domain.DeliveryZone{ID: "z-1", Name: "Kemang", DeliveryFee: 10000, EstimatedTimeMinutes: 30}, nil
		},
	}
	h := mountRoutes("/delivery-zones", NewZoneHandlers(zones).Routes)

	rec := doRequest(t, h, http.MethodPost, "/delivery-zones/detect", "sess-1", `{"lat":-6.26,"lng":106.81}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %q)", rec.Code, rec.Body.String())
	}
	if got.SessionID != "sess-1" || got.Lat != -6.26 || got.Lng != 106.81 {
		t.Fatalf("command = %+v", got)
	}
	payload := decodeEnvelope(t, rec)
	if payload["id"] != "z-1" || payload["name"] != "Kemang" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestZoneDetectErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"out of coverage", services.ErrZoneOutOfCoverage, http.StatusUnprocessableEntity, "out_of_coverage"},
		{"superseded", services.ErrZoneSuperseded, http.StatusConflict, "zone_superseded"},
		{"invalid input", services.ErrZoneInvalidInput, http.StatusBadRequest, "invalid_request"},
		{"unavailable", services.ErrZoneUnavailable, http.StatusServiceUnavailable, "zones_unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			zones := &stubZones{
				detectFn: func(context.Context, services.DetectZoneCommand) (domain.DeliveryZone, error) {
					return domain.DeliveryZone{}, tc.err
				},
			}
			h := mountRoutes("/delivery-zones", NewZoneHandlers(zones).Routes)

			rec := doRequest(t, h, http.MethodPost, "/delivery-zones/detect", "sess-1", `{"lat":0,"lng":0}`)
			wantErrorCode(t, rec, tc.wantStatus, tc.wantCode)
		})
	}
}

func TestZoneSelectAndClear(t *testing.T) {
	var selected domain.DeliveryZone
	var cleared string
	zones := &stubZones{
		selectFn: func(_ context.Context, _ string, zone domain.DeliveryZone) error {
			selected = zone
			return nil
		},
		clearFn: func(_ context.Context, sessionID string) error {
			cleared = sessionID
			return nil
		},
	}
	h := mountRoutes("/delivery-zones", NewZoneHandlers(zones).Routes)

	body := `{"id":"z-2","name":"Tebet","deliveryFee":15000,"estimatedTimeMinutes":45}`
	rec := doRequest(t, h, http.MethodPut, "/delivery-zones/selection", "sess-1", body)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("select status = %d (body %q)", rec.Code, rec.Body.String())
	}
	if selected.ID != "z-2" || selected.DeliveryFee != 15000 {
		t.Fatalf("selected = %+v", selected)
	}

	rec = doRequest(t, h, http.MethodDelete, "/delivery-zones/selection", "sess-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if cleared != "sess-1" {
		t.Fatalf("cleared session = %q", cleared)
	}
}

func TestZoneDetectRequiresSession(t *testing.T) {
	h := mountRoutes("/delivery-zones", NewZoneHandlers(&stubZones{}).Routes)

	rec := doRequest(t, h, http.MethodPost, "/delivery-zones/detect", "", `{"lat":0,"lng":0}`)
	wantErrorCode(t, rec, http.StatusBadRequest, "session_required")
}
