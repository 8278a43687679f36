package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungkita/api/internal/platform/httpx"
	"github.com/warungkita/api/internal/services"
)

// SettingsHandlers exposes the storefront policy in effect.
type SettingsHandlers struct {
	settings services.SettingsService
}

// NewSettingsHandlers constructs handlers delegating to the settings service.
func NewSettingsHandlers(settings services.SettingsService) *SettingsHandlers {
	return &SettingsHandlers{settings: settings}
}

// Routes wires the /settings endpoints onto the provided router.
func (h *SettingsHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.read)
}

type settingsPayload struct {
	MaxPreOrderDays       int      `json:"maxPreOrderDays"`
	MinPreOrderHours      int      `json:"minPreOrderHours"`
	WeekdayHours          string   `json:"weekdayHours"`
	WeekendHours          string   `json:"weekendHours"`
	HolidayHours          string   `json:"holidayHours"`
	Holidays              []string `json:"holidays"`
	TaxRateBps            int      `json:"taxRateBps"`
	FlatDeliveryFee       int64    `json:"flatDeliveryFee"`
	FreeDeliveryThreshold int64    `json:"freeDeliveryThreshold"`
}

func (h *SettingsHandlers) read(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.settings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("settings_unavailable", "store settings are temporarily unavailable", http.StatusServiceUnavailable))
		return
	}

	s := h.settings.Settings(ctx)
	holidays := s.Holidays
	if holidays == nil {
		holidays = []string{}
	}
	writeJSONResponse(w, http.StatusOK, settingsPayload{
		MaxPreOrderDays:       s.MaxPreOrderDays,
		MinPreOrderHours:      s.MinPreOrderHours,
		WeekdayHours:          s.WeekdayHours,
		WeekendHours:          s.WeekendHours,
		HolidayHours:          s.HolidayHours,
		Holidays:              holidays,
		TaxRateBps:            s.TaxRateBps,
		FlatDeliveryFee:       s.FlatDeliveryFee,
		FreeDeliveryThreshold: s.FreeDeliveryThreshold,
	})
}
