package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warungkita/api/internal/platform/httpx"
	"github.com/warungkita/api/internal/services"
)

// PreOrderHandlers serves the scheduling windows for pre-orders.
type PreOrderHandlers struct {
	preorder services.PreOrderService
}

// NewPreOrderHandlers constructs handlers delegating to the pre-order service.
func NewPreOrderHandlers(preorder services.PreOrderService) *PreOrderHandlers {
	return &PreOrderHandlers{preorder: preorder}
}

// Routes wires the /preorder endpoints onto the provided router.
func (h *PreOrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/dates", h.dates)
	r.Get("/slots", h.slots)
}

type dateOptionPayload struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

func (h *PreOrderHandlers) dates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.preorder == nil {
		httpx.WriteError(ctx, w, httpx.NewError("preorder_unavailable", "pre-order scheduling is temporarily unavailable", http.StatusServiceUnavailable))
		return
	}

	options := h.preorder.AvailableDates(ctx)
	payload := make([]dateOptionPayload, 0, len(options))
	for _, opt := range options {
		payload = append(payload, dateOptionPayload{
			Date:  opt.Date.Format("2006-01-02"),
			Label: opt.Label,
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"dates": payload})
}

func (h *PreOrderHandlers) slots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.preorder == nil {
		httpx.WriteError(ctx, w, httpx.NewError("preorder_unavailable", "pre-order scheduling is temporarily unavailable", http.StatusServiceUnavailable))
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		httpx.WriteError(ctx, w, httpx.NewError("date_required", "date query parameter is required", http.StatusBadRequest))
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_date", "date must use the YYYY-MM-DD format", http.StatusBadRequest))
		return
	}

	slots := h.preorder.AvailableTimeSlots(ctx, date)
	if slots == nil {
		slots = []string{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"slots": slots})
}
