package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/warungkita/api/internal/clients"
	domain "github.com/warungkita/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	CartLine      = domain.CartLine
	Customer      = domain.Customer
	DateOption    = domain.DateOption
	DeliveryType  = domain.DeliveryType
	DeliveryZone  = domain.DeliveryZone
	OrderDraft    = domain.OrderDraft
	PricingResult = domain.PricingResult
	ScheduledSlot = domain.ScheduledSlot
	StoreSettings = domain.StoreSettings
	Voucher       = domain.Voucher
)

// CommerceAPI is the outbound surface of the backing commerce collaborator.
// The concrete implementation lives in internal/clients.
type CommerceAPI interface {
	ValidateVoucher(ctx context.Context, req clients.ValidateVoucherRequest) (domain.Voucher, error)
	ListZones(ctx context.Context) ([]domain.DeliveryZone, error)
	LookupZone(ctx context.Context, lat, lng float64) (clients.ZoneLookup, error)
	FetchSettings(ctx context.Context) (domain.StoreSettings, error)
	GetProduct(ctx context.Context, productID string) (clients.Product, error)
	CreateOrder(ctx context.Context, req clients.CreateOrderRequest) (clients.CreatedOrder, error)
}

// SessionStore persists per-session checkout state between requests.
type SessionStore interface {
	GetCart(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	SaveCart(ctx context.Context, sessionID string, lines []domain.CartLine) error
	DeleteCart(ctx context.Context, sessionID string) error
	GetCheckoutData(ctx context.Context, sessionID string) (json.RawMessage, error)
	SaveCheckoutData(ctx context.Context, sessionID string, blob json.RawMessage) error
	DeleteCheckoutData(ctx context.Context, sessionID string) error
	GetVoucher(ctx context.Context, sessionID string) (domain.Voucher, error)
	SaveVoucher(ctx context.Context, sessionID string, voucher domain.Voucher) error
	DeleteVoucher(ctx context.Context, sessionID string) error
	GetZone(ctx context.Context, sessionID string) (domain.DeliveryZone, error)
	SaveZone(ctx context.Context, sessionID string, zone domain.DeliveryZone) error
	DeleteZone(ctx context.Context, sessionID string) error
}

// SettingsService provides the storefront settings with defaults applied.
type SettingsService interface {
	Settings(ctx context.Context) StoreSettings
}

// VoucherService resolves voucher codes into priced discounts for a session.
type VoucherService interface {
	ApplyVoucher(ctx context.Context, cmd ApplyVoucherCommand) (Voucher, error)
	RemoveVoucher(ctx context.Context, sessionID string) error
}

// ApplyVoucherCommand carries the voucher code and the order context the
// validation collaborator prices against.
type ApplyVoucherCommand struct {
	SessionID   string
	Code        string
	Email       string
	TotalAmount int64
}

// ZoneService resolves delivery zones from geolocation or manual selection.
type ZoneService interface {
	ListZones(ctx context.Context) []DeliveryZone
	DetectFromGeolocation(ctx context.Context, cmd DetectZoneCommand) (DeliveryZone, error)
	SelectManually(ctx context.Context, sessionID string, zone DeliveryZone) error
	ClearZone(ctx context.Context, sessionID string) error
}

// DetectZoneCommand carries the coordinates to match against zone coverage.
type DetectZoneCommand struct {
	SessionID string
	Lat       float64
	Lng       float64
}

// PreOrderService generates the selectable dates and time slots for
// scheduled orders.
type PreOrderService interface {
	AvailableDates(ctx context.Context) []DateOption
	AvailableTimeSlots(ctx context.Context, date time.Time) []string
}

// CheckoutService prices drafts and submits completed orders.
type CheckoutService interface {
	Quote(ctx context.Context, cmd QuoteCommand) (PricingResult, error)
	Submit(ctx context.Context, cmd SubmitOrderCommand) (SubmittedOrder, error)
}

// QuoteCommand describes the draft fields not held in the session store.
type QuoteCommand struct {
	SessionID    string
	DeliveryType DeliveryType
	PreOrder     bool
	Slot         ScheduledSlot
}

// SubmitOrderCommand extends a quote with the customer contact details.
type SubmitOrderCommand struct {
	SessionID    string
	DeliveryType DeliveryType
	PreOrder     bool
	Slot         ScheduledSlot
	Customer     Customer
}

// SubmittedOrder is the persisted order record returned by submission.
type SubmittedOrder struct {
	ID        string
	Status    string
	Pricing   PricingResult
	CreatedAt time.Time
}
