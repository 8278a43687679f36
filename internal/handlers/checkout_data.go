package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungkita/api/internal/platform/httpx"
	"github.com/warungkita/api/internal/platform/sessionstore"
	"github.com/warungkita/api/internal/services"
)

const maxCheckoutDataBodySize = 32 * 1024

// CheckoutDataHandlers round-trips the prefilled checkout form blob for a
// session. The blob is opaque JSON owned by the storefront.
type CheckoutDataHandlers struct {
	sessions services.SessionStore
}

// NewCheckoutDataHandlers constructs handlers persisting the checkout form per session.
func NewCheckoutDataHandlers(sessions services.SessionStore) *CheckoutDataHandlers {
	return &CheckoutDataHandlers{sessions: sessions}
}

// Routes wires the /checkout-data endpoints onto the provided router.
func (h *CheckoutDataHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCheckoutData)
	r.Put("/", h.putCheckoutData)
	r.Delete("/", h.deleteCheckoutData)
}

func (h *CheckoutDataHandlers) getCheckoutData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	blob, err := h.sessions.GetCheckoutData(ctx, id)
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_data_not_found", "no checkout data stored for this session", http.StatusNotFound))
		return
	case err != nil:
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (h *CheckoutDataHandlers) putCheckoutData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutDataBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if !json.Valid(body) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "checkout data must be valid JSON", http.StatusBadRequest))
		return
	}

	if err := h.sessions.SaveCheckoutData(ctx, id, body); err != nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutDataHandlers) deleteCheckoutData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	if err := h.sessions.DeleteCheckoutData(ctx, id); err != nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
