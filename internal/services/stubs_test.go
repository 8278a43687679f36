package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/warungkita/api/internal/clients"
	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/platform/sessionstore"
)

// memorySessions is an in-memory SessionStore for tests.
type memorySessions struct {
	mu           sync.Mutex
	carts        map[string][]domain.CartLine
	checkoutData map[string]json.RawMessage
	vouchers     map[string]domain.Voucher
	zones        map[string]domain.DeliveryZone
	failures     map[string]error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{
		carts:        make(map[string][]domain.CartLine),
		checkoutData: make(map[string]json.RawMessage),
		vouchers:     make(map[string]domain.Voucher),
		zones:        make(map[string]domain.DeliveryZone),
		failures:     make(map[string]error),
	}
}

func (m *memorySessions) failOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

func (m *memorySessions) failure(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[op]
}

func (m *memorySessions) GetCart(_ context.Context, sessionID string) ([]domain.CartLine, error) {
	if err := m.failure("GetCart"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	lines, ok := m.carts[sessionID]
	if !ok {
		return nil, sessionstore.ErrNotFound
	}
	return lines, nil
}

func (m *memorySessions) SaveCart(_ context.Context, sessionID string, lines []domain.CartLine) error {
	if err := m.failure("SaveCart"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = lines
	return nil
}

func (m *memorySessions) DeleteCart(_ context.Context, sessionID string) error {
	if err := m.failure("DeleteCart"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *memorySessions) GetCheckoutData(_ context.Context, sessionID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.checkoutData[sessionID]
	if !ok {
		return nil, sessionstore.ErrNotFound
	}
	return blob, nil
}

func (m *memorySessions) SaveCheckoutData(_ context.Context, sessionID string, blob json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkoutData[sessionID] = blob
	return nil
}

func (m *memorySessions) DeleteCheckoutData(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkoutData, sessionID)
	return nil
}

func (m *memorySessions) GetVoucher(_ context.Context, sessionID string) (domain.Voucher, error) {
	if err := m.failure("GetVoucher"); err != nil {
		return domain.Voucher{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	voucher, ok := m.vouchers[sessionID]
	if !ok {
		return domain.Voucher{}, sessionstore.ErrNotFound
	}
	return voucher, nil
}

func (m *memorySessions) SaveVoucher(_ context.Context, sessionID string, voucher domain.Voucher) error {
	if err := m.failure("SaveVoucher"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vouchers[sessionID] = voucher
	return nil
}

func (m *memorySessions) DeleteVoucher(_ context.Context, sessionID string) error {
	if err := m.failure("DeleteVoucher"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vouchers, sessionID)
	return nil
}

func (m *memorySessions) GetZone(_ context.Context, sessionID string) (domain.DeliveryZone, error) {
	if err := m.failure("GetZone"); err != nil {
		return domain.DeliveryZone{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	zone, ok := m.zones[sessionID]
	if !ok {
		return domain.DeliveryZone{}, sessionstore.ErrNotFound
	}
	return zone, nil
}

func (m *memorySessions) SaveZone(_ context.Context, sessionID string, zone domain.DeliveryZone) error {
	if err := m.failure("SaveZone"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones[sessionID] = zone
	return nil
}

func (m *memorySessions) DeleteZone(_ context.Context, sessionID string) error {
	if err := m.failure("DeleteZone"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.zones, sessionID)
	return nil
}

// stubCommerce implements CommerceAPI with overridable functions.
type stubCommerce struct {
	validateVoucher func(ctx context.Context, req clients.ValidateVoucherRequest) (domain.Voucher, error)
	listZones       func(ctx context.Context) ([]domain.DeliveryZone, error)
	lookupZone      func(ctx context.Context, lat, lng float64) (clients.ZoneLookup, error)
	fetchSettings   func(ctx context.Context) (domain.StoreSettings, error)
	getProduct      func(ctx context.Context, productID string) (clients.Product, error)
	createOrder     func(ctx context.Context, req clients.CreateOrderRequest) (clients.CreatedOrder, error)
}

func (s *stubCommerce) ValidateVoucher(ctx context.Context, req clients.ValidateVoucherRequest) (domain.Voucher, error) {
	if s.validateVoucher == nil {
		return domain.Voucher{}, fmt.Errorf("unexpected ValidateVoucher call")
	}
	return s.validateVoucher(ctx, req)
}

func (s *stubCommerce) ListZones(ctx context.Context) ([]domain.DeliveryZone, error) {
	if s.listZones == nil {
		return nil, fmt.Errorf("unexpected ListZones call")
	}
	return s.listZones(ctx)
}

func (s *stubCommerce) LookupZone(ctx context.Context, lat, lng float64) (clients.ZoneLookup, error) {
	if s.lookupZone == nil {
		return clients.ZoneLookup{}, fmt.Errorf("unexpected LookupZone call")
	}
	return s.lookupZone(ctx, lat, lng)
}

func (s *stubCommerce) FetchSettings(ctx context.Context) (domain.StoreSettings, error) {
	if s.fetchSettings == nil {
		return domain.StoreSettings{}, fmt.Errorf("unexpected FetchSettings call")
	}
	return s.fetchSettings(ctx)
}

func (s *stubCommerce) GetProduct(ctx context.Context, productID string) (clients.Product, error) {
	if s.getProduct == nil {
		return clients.Product{}, fmt.Errorf("unexpected GetProduct call")
	}
	return s.getProduct(ctx, productID)
}

func (s *stubCommerce) CreateOrder(ctx context.Context, req clients.CreateOrderRequest) (clients.CreatedOrder, error) {
	if s.createOrder == nil {
		return clients.CreatedOrder{}, fmt.Errorf("unexpected CreateOrder call")
	}
	return s.createOrder(ctx, req)
}

// fixedSettings is a SettingsService returning a constant value.
type fixedSettings struct {
	value domain.StoreSettings
}

func (f fixedSettings) Settings(context.Context) StoreSettings {
	return domain.WithDefaults(f.value)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
