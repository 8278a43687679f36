package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/platform/httpx"
	"github.com/warungkita/api/internal/platform/sessionstore"
	"github.com/warungkita/api/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the session cart blob.
type CartHandlers struct {
	sessions services.SessionStore
}

// NewCartHandlers constructs handlers persisting the cart per session.
func NewCartHandlers(sessions services.SessionStore) *CartHandlers {
	return &CartHandlers{sessions: sessions}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Put("/", h.putCart)
	r.Delete("/", h.deleteCart)
}

type cartLinePayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type cartPayload struct {
	Items []cartLinePayload `json:"items"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	lines, err := h.sessions.GetCart(ctx, id)
	if err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	items := make([]cartLinePayload, 0, len(lines))
	for _, line := range lines {
		items = append(items, cartLinePayload{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	writeJSONResponse(w, http.StatusOK, cartPayload{Items: items})
}

func (h *CartHandlers) putCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var payload cartPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed cart payload", http.StatusBadRequest))
		return
	}

	lines := make([]domain.CartLine, 0, len(payload.Items))
	for i, item := range payload.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", fmt.Sprintf("items[%d].productId is required", i), http.StatusBadRequest))
			return
		}
		if item.Quantity < 1 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", fmt.Sprintf("items[%d].quantity must be at least 1", i), http.StatusBadRequest))
			return
		}
		if item.Price < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", fmt.Sprintf("items[%d].price must not be negative", i), http.StatusBadRequest))
			return
		}
		lines = append(lines, domain.CartLine{
			ProductID: strings.TrimSpace(item.ProductID),
			Name:      strings.TrimSpace(item.Name),
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err := h.sessions.SaveCart(ctx, id, lines); err != nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *CartHandlers) deleteCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	if err := h.sessions.DeleteCart(ctx, id); err != nil {
		writeSessionStoreUnavailable(ctx, w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeSessionStoreUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("session_store_unavailable", "session store is unavailable", http.StatusServiceUnavailable))
}
