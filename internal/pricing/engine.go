// Package pricing derives checkout totals from an order draft. Every function
// is pure and deterministic: the engine performs no I/O and never mutates its
// inputs, so a quote can be recomputed from scratch on every draft change.
package pricing

import (
	domain "github.com/warungkita/api/internal/domain"
)

// Config hoists the storefront pricing constants into one place. It is derived
// from StoreSettings exactly once; no call site carries its own literals.
type Config struct {
	// TaxRateBps is the VAT rate in basis points (1100 = 11%).
	TaxRateBps int
	// FlatDeliveryFee applies when delivery is chosen but no zone is selected
	// and the subtotal has not crossed the free-delivery threshold.
	FlatDeliveryFee int64
	// FreeDeliveryThreshold waives the flat fee for subtotals strictly above it.
	FreeDeliveryThreshold int64
}

// ConfigFromSettings projects the pricing-relevant slice of the store settings.
func ConfigFromSettings(settings domain.StoreSettings) Config {
	return Config{
		TaxRateBps:            settings.TaxRateBps,
		FlatDeliveryFee:       settings.FlatDeliveryFee,
		FreeDeliveryThreshold: settings.FreeDeliveryThreshold,
	}
}

// Quote computes subtotal, shipping, tax, discount and the grand total for the
// draft. An empty cart yields an all-zero result; no error paths exist.
//
// Tax is assessed on subtotal minus discount (discount-before-tax), and the
// total floors at zero so a discount exceeding the rest of the order cannot
// produce a negative amount payable.
func Quote(draft domain.OrderDraft, cfg Config) domain.PricingResult {
	subtotal := draft.Subtotal()
	if subtotal == 0 {
		return domain.PricingResult{}
	}

	shipping := shippingFee(draft, subtotal, cfg)

	var discount int64
	if draft.AppliedVoucher != nil {
		discount = draft.AppliedVoucher.DiscountAmount
	}

	taxable := subtotal - discount
	tax := roundHalfUpBps(taxable, cfg.TaxRateBps)

	total := subtotal + shipping + tax - discount
	if total < 0 {
		total = 0
	}

	return domain.PricingResult{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}
}

func shippingFee(draft domain.OrderDraft, subtotal int64, cfg Config) int64 {
	if draft.DeliveryType != domain.DeliveryTypeDelivery {
		return 0
	}
	if draft.SelectedZone != nil {
		return draft.SelectedZone.DeliveryFee
	}
	if subtotal > cfg.FreeDeliveryThreshold {
		return 0
	}
	return cfg.FlatDeliveryFee
}

// roundHalfUpBps multiplies amount by a basis-point rate and rounds half-up to
// the nearest whole Rupiah. Half-up means ties round toward positive infinity,
// matching the storefront's historical rounding for negative transients too.
func roundHalfUpBps(amount int64, bps int) int64 {
	num := amount*int64(bps) + 5000
	quotient := num / 10000
	if num%10000 != 0 && num < 0 {
		quotient--
	}
	return quotient
}
