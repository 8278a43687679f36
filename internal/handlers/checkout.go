package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/format"
	"github.com/warungkita/api/internal/platform/httpx"
	"github.com/warungkita/api/internal/services"
)

const maxCheckoutBodySize = 32 * 1024

// CheckoutHandlers exposes quoting and order submission.
type CheckoutHandlers struct {
	checkout services.CheckoutService
	submitMW func(http.Handler) http.Handler
}

// CheckoutHandlerOption customises the checkout handlers.
type CheckoutHandlerOption func(*CheckoutHandlers)

// WithSubmitMiddleware wraps only the submit route, typically with the
// idempotency middleware.
func WithSubmitMiddleware(mw func(http.Handler) http.Handler) CheckoutHandlerOption {
	return func(h *CheckoutHandlers) {
		h.submitMW = mw
	}
}

// NewCheckoutHandlers constructs handlers delegating to the checkout service.
func NewCheckoutHandlers(checkout services.CheckoutService, opts ...CheckoutHandlerOption) *CheckoutHandlers {
	h := &CheckoutHandlers{checkout: checkout}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/quote", h.quote)
	if h.submitMW != nil {
		r.With(h.submitMW).Post("/submit", h.submit)
		return
	}
	r.Post("/submit", h.submit)
}

type customerPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type checkoutRequest struct {
	DeliveryType  string          `json:"deliveryType"`
	IsPreOrder    bool            `json:"isPreOrder"`
	ScheduledDate string          `json:"scheduledDate,omitempty"`
	ScheduledTime string          `json:"scheduledTime,omitempty"`
	Customer      customerPayload `json:"customer"`
}

type pricingPayload struct {
	Subtotal   int64  `json:"subtotal"`
	Shipping   int64  `json:"shipping"`
	Tax        int64  `json:"tax"`
	Discount   int64  `json:"discount"`
	Total      int64  `json:"total"`
	TotalLabel string `json:"totalLabel"`
}

func pricingFromResult(result services.PricingResult) pricingPayload {
	return pricingPayload{
		Subtotal:   result.Subtotal,
		Shipping:   result.Shipping,
		Tax:        result.Tax,
		Discount:   result.Discount,
		Total:      result.Total,
		TotalLabel: format.Rupiah(result.Total),
	}
}

func (h *CheckoutHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	req, ok := h.decodeRequest(ctx, w, r)
	if !ok {
		return
	}

	slot, ok := h.decodeSlot(ctx, w, req)
	if !ok {
		return
	}

	result, err := h.checkout.Quote(ctx, services.QuoteCommand{
		SessionID:    id,
		DeliveryType: domain.ParseDeliveryType(req.DeliveryType),
		PreOrder:     req.IsPreOrder,
		Slot:         slot,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, pricingFromResult(result))
}

func (h *CheckoutHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeCheckoutUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	req, ok := h.decodeRequest(ctx, w, r)
	if !ok {
		return
	}

	slot, ok := h.decodeSlot(ctx, w, req)
	if !ok {
		return
	}

	order, err := h.checkout.Submit(ctx, services.SubmitOrderCommand{
		SessionID:    id,
		DeliveryType: domain.ParseDeliveryType(req.DeliveryType),
		PreOrder:     req.IsPreOrder,
		Slot:         slot,
		Customer: services.Customer{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Email:   req.Customer.Email,
			Address: req.Customer.Address,
			Notes:   req.Customer.Notes,
		},
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"orderId":   order.ID,
		"status":    order.Status,
		"pricing":   pricingFromResult(order.Pricing),
		"createdAt": order.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *CheckoutHandlers) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (checkoutRequest, bool) {
	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return checkoutRequest{}, false
	}

	var req checkoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed checkout payload", http.StatusBadRequest))
		return checkoutRequest{}, false
	}
	return req, true
}

// decodeSlot converts the optional scheduledDate/scheduledTime pair. Either
// half may be present on its own; the service rejects incomplete pairs on
// submission.
func (h *CheckoutHandlers) decodeSlot(ctx context.Context, w http.ResponseWriter, req checkoutRequest) (services.ScheduledSlot, bool) {
	slot := services.ScheduledSlot{Time: req.ScheduledTime}
	if req.ScheduledDate != "" {
		date, err := time.Parse("2006-01-02", req.ScheduledDate)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "scheduledDate must use the YYYY-MM-DD format", http.StatusBadRequest))
			return services.ScheduledSlot{}, false
		}
		slot.Date = &date
	}
	return slot, true
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		validation *services.ValidationError
		invalid    *services.InvalidProductsError
		rejected   *services.SubmissionRejectedError
	)

	switch {
	case errors.As(err, &validation):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_validation_failed", "checkout validation failed", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"fields": validation.Fields}))
	case errors.As(err, &invalid):
		httpx.WriteError(ctx, w, httpx.NewError("products_unavailable", invalid.Error(), http.StatusConflict).
			WithDetails(map[string]any{"products": invalid.Names}))
	case errors.As(err, &rejected):
		httpx.WriteError(ctx, w, httpx.NewError("order_rejected", rejected.Message, http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid checkout request", http.StatusBadRequest))
	default:
		writeCheckoutUnavailable(ctx, w)
	}
}

func writeCheckoutUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is temporarily unavailable", http.StatusServiceUnavailable))
}
