package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/platform/httpx"
	"github.com/warungkita/api/internal/services"
)

const maxZoneBodySize = 4 * 1024

// ZoneHandlers exposes the delivery zone catalog and zone selection.
type ZoneHandlers struct {
	zones services.ZoneService
}

// NewZoneHandlers constructs handlers delegating to the zone service.
func NewZoneHandlers(zones services.ZoneService) *ZoneHandlers {
	return &ZoneHandlers{zones: zones}
}

// Routes wires the /delivery-zones endpoints onto the provided router.
func (h *ZoneHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listZones)
	r.Post("/detect", h.detectZone)
	r.Put("/selection", h.selectZone)
	r.Delete("/selection", h.clearZone)
}

type zonePayload struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	DeliveryFee          int64  `json:"deliveryFee"`
	EstimatedTimeMinutes int    `json:"estimatedTimeMinutes"`
}

func zoneFromDomain(zone domain.DeliveryZone) zonePayload {
	return zonePayload{
		ID:                   zone.ID,
		Name:                 zone.Name,
		DeliveryFee:          zone.DeliveryFee,
		EstimatedTimeMinutes: zone.EstimatedTimeMinutes,
	}
}

func (h *ZoneHandlers) listZones(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.zones == nil {
		writeZoneUnavailable(ctx, w)
		return
	}

	zones := h.zones.ListZones(ctx)
	payload := make([]zonePayload, 0, len(zones))
	for _, zone := range zones {
		payload = append(payload, zoneFromDomain(zone))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"zones": payload})
}

type detectZoneRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *ZoneHandlers) detectZone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.zones == nil {
		writeZoneUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxZoneBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req detectZoneRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed coordinates payload", http.StatusBadRequest))
		return
	}

	zone, err := h.zones.DetectFromGeolocation(ctx, services.DetectZoneCommand{
		SessionID: id,
		Lat:       req.Lat,
		Lng:       req.Lng,
	})
	if err != nil {
		writeZoneError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, zoneFromDomain(zone))
}

func (h *ZoneHandlers) selectZone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.zones == nil {
		writeZoneUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxZoneBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req zonePayload
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed zone payload", http.StatusBadRequest))
		return
	}

	err = h.zones.SelectManually(ctx, id, domain.DeliveryZone{
		ID:                   req.ID,
		Name:                 req.Name,
		DeliveryFee:          req.DeliveryFee,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
	})
	if err != nil {
		writeZoneError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ZoneHandlers) clearZone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.zones == nil {
		writeZoneUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	if err := h.zones.ClearZone(ctx, id); err != nil {
		writeZoneError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeZoneError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrZoneOutOfCoverage):
		httpx.WriteError(ctx, w, httpx.NewError("out_of_coverage", "location is outside every delivery zone", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrZoneSuperseded):
		httpx.WriteError(ctx, w, httpx.NewError("zone_superseded", "a newer zone request was processed first", http.StatusConflict))
	case errors.Is(err, services.ErrZoneInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid zone request", http.StatusBadRequest))
	default:
		writeZoneUnavailable(ctx, w)
	}
}

func writeZoneUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("zones_unavailable", "delivery zone lookup is temporarily unavailable", http.StatusServiceUnavailable))
}
