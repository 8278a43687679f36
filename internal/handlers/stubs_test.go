package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/platform/requestctx"
	"github.com/warungkita/api/internal/platform/sessionstore"
	"github.com/warungkita/api/internal/services"
)

// memorySessions backs handler tests with an in-memory session store.
// Setting fail makes every call report a store outage.
type memorySessions struct {
	mu           sync.Mutex
	carts        map[string][]domain.CartLine
	checkoutData map[string]json.RawMessage
	fail         bool
}

func newMemorySessions() *memorySessions {
	return &memorySessions{
		carts:        make(map[string][]domain.CartLine),
		checkoutData: make(map[string]json.RawMessage),
	}
}

var errStoreDown = io.ErrUnexpectedEOF

func (m *memorySessions) GetCart(_ context.Context, sessionID string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	lines, ok := m.carts[sessionID]
	if !ok {
		return nil, sessionstore.ErrNotFound
	}
	return lines, nil
}

func (m *memorySessions) SaveCart(_ context.Context, sessionID string, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	m.carts[sessionID] = lines
	return nil
}

func (m *memorySessions) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	delete(m.carts, sessionID)
	return nil
}

func (m *memorySessions) GetCheckoutData(_ context.Context, sessionID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	blob, ok := m.checkoutData[sessionID]
	if !ok {
		return nil, sessionstore.ErrNotFound
	}
	return blob, nil
}

func (m *memorySessions) SaveCheckoutData(_ context.Context, sessionID string, blob json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	m.checkoutData[sessionID] = blob
	return nil
}

func (m *memorySessions) DeleteCheckoutData(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	delete(m.checkoutData, sessionID)
	return nil
}

func (m *memorySessions) GetVoucher(context.Context, string) (domain.Voucher, error) {
	return domain.Voucher{}, sessionstore.ErrNotFound
}

func (m *memorySessions) SaveVoucher(context.Context, string, domain.Voucher) error { return nil }

func (m *memorySessions) DeleteVoucher(context.Context, string) error { return nil }

func (m *memorySessions) GetZone(context.Context, string) (domain.DeliveryZone, error) {
	return domain.DeliveryZone{}, sessionstore.ErrNotFound
}

func (m *memorySessions) SaveZone(context.Context, string, domain.DeliveryZone) error { return nil }

func (m *memorySessions) DeleteZone(context.Context, string) error { return nil }

type stubVouchers struct {
	applyFn  func(ctx context.Context, cmd services.ApplyVoucherCommand) (domain.Voucher, error)
	removeFn func(ctx context.Context, sessionID string) error
}

func (s *stubVouchers) ApplyVoucher(ctx context.Context, cmd services.ApplyVoucherCommand) (domain.Voucher, error) {
	if s.applyFn == nil {
		return domain.Voucher{}, errStoreDown
	}
	return s.applyFn(ctx, cmd)
}

func (s *stubVouchers) RemoveVoucher(ctx context.Context, sessionID string) error {
	if s.removeFn == nil {
		return errStoreDown
	}
	return s.removeFn(ctx, sessionID)
}

type stubZones struct {
	listFn   func(ctx context.Context) []domain.DeliveryZone
	detectFn func(ctx context.Context, cmd services.DetectZoneCommand) (domain.DeliveryZone, error)
	selectFn func(ctx context.Context, sessionID string, zone domain.DeliveryZone) error
	clearFn  func(ctx context.Context, sessionID string) error
}

func (s *stubZones) ListZones(ctx context.Context) []domain.DeliveryZone {
	if s.listFn == nil {
		return nil
	}
	return s.listFn(ctx)
}

func (s *stubZones) DetectFromGeolocation(ctx context.Context, cmd services.DetectZoneCommand) (domain.DeliveryZone, error) {
	if s.detectFn == nil {
		return domain.DeliveryZone{}, errStoreDown
	}
	return s.detectFn(ctx, cmd)
}

func (s *stubZones) SelectManually(ctx context.Context, sessionID string, zone domain.DeliveryZone) error {
	if s.selectFn == nil {
		return errStoreDown
	}
	return s.selectFn(ctx, sessionID, zone)
}

func (s *stubZones) ClearZone(ctx context.Context, sessionID string) error {
	if s.clearFn == nil {
		return errStoreDown
	}
	return s.clearFn(ctx, sessionID)
}

type stubPreOrder struct {
	datesFn func(ctx context.Context) []domain.DateOption
	slotsFn func(ctx context.Context, date time.Time) []string
}

func (s *stubPreOrder) AvailableDates(ctx context.Context) []domain.DateOption {
	if s.datesFn == nil {
		return nil
	}
	return s.datesFn(ctx)
}

func (s *stubPreOrder) AvailableTimeSlots(ctx context.Context, date time.Time) []string {
	if s.slotsFn == nil {
		return nil
	}
	return s.slotsFn(ctx, date)
}

type stubSettings struct {
	value domain.StoreSettings
}

func (s *stubSettings) Settings(context.Context) domain.StoreSettings {
	return domain.WithDefaults(s.value)
}

type stubCheckout struct {
	quoteFn  func(ctx context.Context, cmd services.QuoteCommand) (domain.PricingResult, error)
	submitFn func(ctx context.Context, cmd services.SubmitOrderCommand) (services.SubmittedOrder, error)
}

func (s *stubCheckout) Quote(ctx context.Context, cmd services.QuoteCommand) (domain.PricingResult, error) {
	if s.quoteFn == nil {
		return domain.PricingResult{}, errStoreDown
	}
	return s.quoteFn(ctx, cmd)
}

func (s *stubCheckout) Submit(ctx context.Context, cmd services.SubmitOrderCommand) (services.SubmittedOrder, error) {
	if s.submitFn == nil {
		return services.SubmittedOrder{}, errStoreDown
	}
	return s.submitFn(ctx, cmd)
}

// mountRoutes builds a router with the registrar mounted under prefix the
// way NewRouter does.
func mountRoutes(prefix string, reg RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Route(prefix, reg)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if sessionID != "" {
		req = req.WithContext(requestctx.WithSessionID(req.Context(), sessionID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return payload
}

func wantErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, status, rec.Body.String())
	}
	payload := decodeEnvelope(t, rec)
	if payload["error"] != code {
		t.Fatalf("error = %v, want %q", payload["error"], code)
	}
}
