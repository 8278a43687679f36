package domain

import (
	"strings"
	"time"
)

// DeliveryType enumerates how an order reaches the customer.
type DeliveryType string

const (
	// DeliveryTypeDelivery sends the order to a customer address inside a delivery zone.
	DeliveryTypeDelivery DeliveryType = "DELIVERY"
	// DeliveryTypePickup has the customer collect the order at the store.
	DeliveryTypePickup DeliveryType = "PICKUP"
	// DeliveryTypeDineIn serves the order at a table in the store.
	DeliveryTypeDineIn DeliveryType = "DINE_IN"
)

// ParseDeliveryType normalises a wire value into a DeliveryType, defaulting to delivery.
func ParseDeliveryType(value string) DeliveryType {
	switch DeliveryType(strings.ToUpper(strings.TrimSpace(value))) {
	case DeliveryTypePickup:
		return DeliveryTypePickup
	case DeliveryTypeDineIn:
		return DeliveryTypeDineIn
	default:
		return DeliveryTypeDelivery
	}
}

// CartLine is an immutable snapshot of a single cart entry at quote time.
// UnitPrice is whole Rupiah; there are no minor units.
type CartLine struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
}

// DeliveryZone is a geographic coverage area with a flat fee and a delivery ETA.
type DeliveryZone struct {
	ID                   string
	Name                 string
	DeliveryFee          int64
	EstimatedTimeMinutes int
}

// VoucherType distinguishes percentage vouchers from fixed-amount vouchers.
type VoucherType string

const (
	// VoucherTypePercentage discounts a percentage of the order amount.
	VoucherTypePercentage VoucherType = "PERCENTAGE"
	// VoucherTypeFixed discounts a fixed Rupiah amount.
	VoucherTypeFixed VoucherType = "FIXED"
)

// Voucher is a discount code priced entirely by the external validation
// service; DiscountAmount is consumed verbatim and never re-derived locally.
type Voucher struct {
	ID             string
	Code           string
	Name           string
	Type           VoucherType
	Value          int64
	DiscountAmount int64
}

// ScheduledSlot keeps the pre-order date and time as an explicit pair. The two
// halves are only combined into a timestamp once both are present, so a
// half-selected slot can never leak a malformed scheduled time.
type ScheduledSlot struct {
	Date *time.Time
	Time string
}

// Complete reports whether both a date and a time have been chosen.
func (s ScheduledSlot) Complete() bool {
	return s.Date != nil && strings.TrimSpace(s.Time) != ""
}

// Empty reports whether neither half of the slot has been chosen.
func (s ScheduledSlot) Empty() bool {
	return s.Date == nil && strings.TrimSpace(s.Time) == ""
}

// At combines the pair into a single timestamp in loc. It returns the zero
// time when the slot is incomplete or the time component does not parse.
func (s ScheduledSlot) At(loc *time.Location) time.Time {
	if !s.Complete() {
		return time.Time{}
	}
	parsed, err := time.Parse("15:04", strings.TrimSpace(s.Time))
	if err != nil {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}
	d := s.Date
	return time.Date(d.Year(), d.Month(), d.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
}

// Customer carries the contact fields collected on the checkout form.
type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

// OrderDraft is the in-memory, not-yet-submitted representation of an order.
// It is rebuilt from scratch whenever the cart, zone, voucher or pre-order
// settings change and is discarded once the order has been submitted.
type OrderDraft struct {
	ID             string
	Lines          []CartLine
	DeliveryType   DeliveryType
	SelectedZone   *DeliveryZone
	AppliedVoucher *Voucher
	PreOrder       bool
	Slot           ScheduledSlot
	Customer       Customer
}

// Subtotal sums unit price times quantity over all lines.
func (d OrderDraft) Subtotal() int64 {
	var total int64
	for _, line := range d.Lines {
		if line.Quantity <= 0 {
			continue
		}
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// DateOption is one selectable pre-order date with its display label.
type DateOption struct {
	Date  time.Time
	Label string
}
