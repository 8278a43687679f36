package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/warungkita/api/internal/clients"
	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/platform/sessionstore"
	"github.com/warungkita/api/internal/preorder"
	"github.com/warungkita/api/internal/pricing"
)

var (
	errCheckoutAPIRequired      = errors.New("checkout service: commerce api is required")
	errCheckoutSessionsRequired = errors.New("checkout service: session store is required")
	errCheckoutSettingsRequired = errors.New("checkout service: settings service is required")
	errCheckoutClockRequired    = errors.New("checkout service: clock is required")
)

// ErrCheckoutInvalidInput indicates the caller supplied invalid input.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

// ErrCheckoutUnavailable indicates a collaborator or the session store could
// not be reached; the attempt is recoverable by retrying.
var ErrCheckoutUnavailable = errors.New("checkout service: unavailable")

// ValidationError reports the locally detected field problems that block a
// submission. No network call is made when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "checkout validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("checkout validation failed: %s", strings.Join(names, ", "))
}

// InvalidProductsError reports cart lines whose products no longer exist in
// the catalog. The cart is left untouched so the user can correct it.
type InvalidProductsError struct {
	Names []string
}

func (e *InvalidProductsError) Error() string {
	return fmt.Sprintf("products no longer available: %s", strings.Join(e.Names, ", "))
}

// SubmissionRejectedError carries the order collaborator's rejection verbatim.
type SubmissionRejectedError struct {
	Message string
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Message)
}

// CheckoutServiceDeps wires the collaborators for quoting and submission.
type CheckoutServiceDeps struct {
	API         CommerceAPI
	Sessions    SessionStore
	Settings    SettingsService
	Clock       func() time.Time
	Location    *time.Location
	Logger      func(context.Context, string, map[string]any)
	IDGenerator func() string
}

type checkoutService struct {
	api      CommerceAPI
	sessions SessionStore
	settings SettingsService
	now      func() time.Time
	loc      *time.Location
	logger   func(context.Context, string, map[string]any)
	newID    func() string
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.API == nil {
		return nil, errCheckoutAPIRequired
	}
	if deps.Sessions == nil {
		return nil, errCheckoutSessionsRequired
	}
	if deps.Settings == nil {
		return nil, errCheckoutSettingsRequired
	}
	if deps.Clock == nil {
		return nil, errCheckoutClockRequired
	}

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &checkoutService{
		api:      deps.API,
		sessions: deps.Sessions,
		settings: deps.Settings,
		now:      deps.Clock,
		loc:      loc,
		logger:   logger,
		newID:    idGen,
	}, nil
}

// Quote rebuilds the draft from the session state plus the request fields and
// prices it. An empty cart quotes to all zeros rather than an error.
func (s *checkoutService) Quote(ctx context.Context, cmd QuoteCommand) (PricingResult, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	if sessionID == "" {
		return PricingResult{}, ErrCheckoutInvalidInput
	}

	draft, err := s.buildDraft(ctx, sessionID, cmd.DeliveryType, cmd.PreOrder, cmd.Slot, Customer{})
	if err != nil {
		return PricingResult{}, err
	}

	cfg := pricing.ConfigFromSettings(s.settings.Settings(ctx))
	return pricing.Quote(draft, cfg), nil
}

// Submit validates the draft, verifies every cart line still exists in the
// catalog, and posts the order to the collaborator. On success the session's
// checkout state is cleared.
func (s *checkoutService) Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmittedOrder, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	if sessionID == "" {
		return SubmittedOrder{}, ErrCheckoutInvalidInput
	}

	draft, err := s.buildDraft(ctx, sessionID, cmd.DeliveryType, cmd.PreOrder, cmd.Slot, cmd.Customer)
	if err != nil {
		return SubmittedOrder{}, err
	}
	draft.ID = s.newID()

	settings := s.settings.Settings(ctx)
	if verr := s.validateDraft(draft, settings); verr != nil {
		return SubmittedOrder{}, verr
	}

	if err := s.checkProductsExist(ctx, draft.Lines); err != nil {
		return SubmittedOrder{}, err
	}

	result := pricing.Quote(draft, pricing.ConfigFromSettings(settings))

	created, err := s.api.CreateOrder(ctx, s.orderPayload(draft, result))
	if err != nil {
		if message, ok := clients.RejectionMessage(err); ok {
			return SubmittedOrder{}, &SubmissionRejectedError{Message: message}
		}
		s.logger(ctx, "checkout.submit_failed", map[string]any{
			"draftID": draft.ID,
			"error":   err.Error(),
		})
		return SubmittedOrder{}, ErrCheckoutUnavailable
	}

	s.clearSession(ctx, sessionID)

	return SubmittedOrder{
		ID:        created.ID,
		Status:    created.Status,
		Pricing:   result,
		CreatedAt: created.CreatedAt,
	}, nil
}

// buildDraft assembles an OrderDraft from the session blobs and the request
// fields. Missing session state maps to an empty cart, no voucher, no zone.
func (s *checkoutService) buildDraft(ctx context.Context, sessionID string, deliveryType DeliveryType, preOrder bool, slot ScheduledSlot, customer Customer) (OrderDraft, error) {
	lines, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		s.logger(ctx, "checkout.cart_load_failed", map[string]any{"error": err.Error()})
		return OrderDraft{}, ErrCheckoutUnavailable
	}

	draft := OrderDraft{
		Lines:        lines,
		DeliveryType: deliveryType,
		PreOrder:     preOrder,
		Slot:         slot,
		Customer:     customer,
	}

	voucher, err := s.sessions.GetVoucher(ctx, sessionID)
	switch {
	case err == nil:
		draft.AppliedVoucher = &voucher
	case !errors.Is(err, sessionstore.ErrNotFound):
		s.logger(ctx, "checkout.voucher_load_failed", map[string]any{"error": err.Error()})
		return OrderDraft{}, ErrCheckoutUnavailable
	}

	// The zone only feeds pricing for delivery orders.
	if deliveryType == domain.DeliveryTypeDelivery {
		zone, err := s.sessions.GetZone(ctx, sessionID)
		switch {
		case err == nil:
			draft.SelectedZone = &zone
		case !errors.Is(err, sessionstore.ErrNotFound):
			s.logger(ctx, "checkout.zone_load_failed", map[string]any{"error": err.Error()})
			return OrderDraft{}, ErrCheckoutUnavailable
		}
	}

	return draft, nil
}

func (s *checkoutService) validateDraft(draft OrderDraft, settings StoreSettings) error {
	fields := map[string]string{}

	if len(draft.Lines) == 0 {
		fields["cart"] = "keranjang masih kosong"
	}
	if strings.TrimSpace(draft.Customer.Name) == "" {
		fields["name"] = "nama wajib diisi"
	}
	if strings.TrimSpace(draft.Customer.Phone) == "" {
		fields["phone"] = "nomor telepon wajib diisi"
	}
	if draft.DeliveryType == domain.DeliveryTypeDelivery && strings.TrimSpace(draft.Customer.Address) == "" {
		fields["address"] = "alamat pengiriman wajib diisi"
	}

	if draft.PreOrder {
		if msg := s.validateSlot(draft.Slot, settings); msg != "" {
			fields["scheduledTime"] = msg
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validateSlot rejects half-selected slots and slots outside the window the
// generator would offer.
func (s *checkoutService) validateSlot(slot ScheduledSlot, settings StoreSettings) string {
	if !slot.Complete() {
		return "tanggal dan jam pre-order harus dipilih"
	}

	now := s.now().In(s.loc)
	// Rebuild the calendar day in the store's zone so a UTC-parsed date does
	// not shift across midnight.
	d := slot.Date
	date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)

	inWindow := false
	for _, option := range preorder.AvailableDates(now, settings.MaxPreOrderDays) {
		if option.Date.Year() == date.Year() && option.Date.YearDay() == date.YearDay() {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return "tanggal pre-order di luar jangkauan"
	}

	slotTime := strings.TrimSpace(slot.Time)
	for _, available := range preorder.AvailableTimeSlots(date, settings, now) {
		if available == slotTime {
			return ""
		}
	}
	return "jam pre-order tidak tersedia"
}

// checkProductsExist guards against products removed from the catalog between
// cart-add and submission. Any invalid line aborts with the offending names.
func (s *checkoutService) checkProductsExist(ctx context.Context, lines []CartLine) error {
	var invalid []string
	for _, line := range lines {
		product, err := s.api.GetProduct(ctx, line.ProductID)
		switch {
		case errors.Is(err, clients.ErrProductNotFound):
			invalid = append(invalid, line.Name)
		case err != nil:
			s.logger(ctx, "checkout.product_check_failed", map[string]any{
				"productID": line.ProductID,
				"error":     err.Error(),
			})
			return ErrCheckoutUnavailable
		case !product.Available:
			invalid = append(invalid, line.Name)
		}
	}
	if len(invalid) > 0 {
		return &InvalidProductsError{Names: invalid}
	}
	return nil
}

func (s *checkoutService) orderPayload(draft OrderDraft, result PricingResult) clients.CreateOrderRequest {
	items := make([]clients.OrderItemPayload, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		items = append(items, clients.OrderItemPayload{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	req := clients.CreateOrderRequest{
		Items:         items,
		CustomerName:  strings.TrimSpace(draft.Customer.Name),
		CustomerPhone: strings.TrimSpace(draft.Customer.Phone),
		CustomerEmail: strings.TrimSpace(draft.Customer.Email),
		Address:       strings.TrimSpace(draft.Customer.Address),
		Notes:         strings.TrimSpace(draft.Customer.Notes),
		DeliveryType:  string(draft.DeliveryType),
		DeliveryFee:   result.Shipping,
		Subtotal:      result.Subtotal,
		Tax:           result.Tax,
		Discount:      result.Discount,
		Total:         result.Total,
		IsPreOrder:    draft.PreOrder,
	}
	if draft.SelectedZone != nil {
		req.DeliveryZone = draft.SelectedZone.ID
	}
	if draft.AppliedVoucher != nil {
		req.VoucherCode = draft.AppliedVoucher.Code
	}
	if draft.PreOrder && draft.Slot.Complete() {
		req.ScheduledTime = draft.Slot.At(s.loc).Format("2006-01-02 15:04")
	}
	return req
}

// clearSession discards the submitted draft's state. Failures are logged and
// tolerated; the order has already been accepted.
func (s *checkoutService) clearSession(ctx context.Context, sessionID string) {
	if err := s.sessions.DeleteCart(ctx, sessionID); err != nil {
		s.logger(ctx, "checkout.clear_cart_failed", map[string]any{"error": err.Error()})
	}
	if err := s.sessions.DeleteCheckoutData(ctx, sessionID); err != nil {
		s.logger(ctx, "checkout.clear_checkout_data_failed", map[string]any{"error": err.Error()})
	}
	if err := s.sessions.DeleteVoucher(ctx, sessionID); err != nil {
		s.logger(ctx, "checkout.clear_voucher_failed", map[string]any{"error": err.Error()})
	}
	if err := s.sessions.DeleteZone(ctx, sessionID); err != nil {
		s.logger(ctx, "checkout.clear_zone_failed", map[string]any{"error": err.Error()})
	}
}
