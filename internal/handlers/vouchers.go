package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungkita/api/internal/format"
	"github.com/warungkita/api/internal/platform/httpx"
	"github.com/warungkita/api/internal/services"
)

const maxVoucherBodySize = 4 * 1024

// VoucherHandlers exposes voucher application for the current session.
type VoucherHandlers struct {
	vouchers services.VoucherService
}

// NewVoucherHandlers constructs handlers delegating to the voucher service.
func NewVoucherHandlers(vouchers services.VoucherService) *VoucherHandlers {
	return &VoucherHandlers{vouchers: vouchers}
}

// Routes wires the /vouchers endpoints onto the provided router.
func (h *VoucherHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/apply", h.applyVoucher)
	r.Delete("/", h.removeVoucher)
}

type applyVoucherRequest struct {
	Code        string `json:"code"`
	Email       string `json:"email,omitempty"`
	TotalAmount int64  `json:"totalAmount"`
}

type voucherPayload struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name,omitempty"`
	Type           string `json:"type"`
	Value          int64  `json:"value"`
	DiscountAmount int64  `json:"discountAmount"`
	DiscountLabel  string `json:"discountLabel"`
}

func (h *VoucherHandlers) applyVoucher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.vouchers == nil {
		writeVoucherUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxVoucherBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req applyVoucherRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed voucher payload", http.StatusBadRequest))
		return
	}

	voucher, err := h.vouchers.ApplyVoucher(ctx, services.ApplyVoucherCommand{
		SessionID:   id,
		Code:        req.Code,
		Email:       req.Email,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		writeVoucherError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, voucherPayload{
		ID:             voucher.ID,
		Code:           voucher.Code,
		Name:           voucher.Name,
		Type:           string(voucher.Type),
		Value:          voucher.Value,
		DiscountAmount: voucher.DiscountAmount,
		DiscountLabel:  format.Rupiah(voucher.DiscountAmount),
	})
}

func (h *VoucherHandlers) removeVoucher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.vouchers == nil {
		writeVoucherUnavailable(ctx, w)
		return
	}

	id, ok := sessionID(ctx, w)
	if !ok {
		return
	}

	if err := h.vouchers.RemoveVoucher(ctx, id); err != nil {
		writeVoucherError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeVoucherError(ctx context.Context, w http.ResponseWriter, err error) {
	var rejected *services.VoucherRejectedError

	switch {
	case errors.Is(err, services.ErrVoucherEmptyCode):
		httpx.WriteError(ctx, w, httpx.NewError("voucher_code_required", "voucher code is required", http.StatusBadRequest))
	case errors.As(err, &rejected):
		httpx.WriteError(ctx, w, httpx.NewError("voucher_rejected", rejected.Message, http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrVoucherSuperseded):
		httpx.WriteError(ctx, w, httpx.NewError("voucher_superseded", "a newer voucher request was processed first", http.StatusConflict))
	case errors.Is(err, services.ErrVoucherInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid voucher request", http.StatusBadRequest))
	default:
		writeVoucherUnavailable(ctx, w)
	}
}

func writeVoucherUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("voucher_unavailable", "voucher validation is temporarily unavailable", http.StatusServiceUnavailable))
}
