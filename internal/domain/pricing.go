package domain

// PricingResult captures the aggregated monetary outputs of pricing a draft.
// All figures are non-negative whole Rupiah and Total is floored at zero so a
// discount can never drive the payable amount negative.
type PricingResult struct {
	Subtotal int64
	Shipping int64
	Tax      int64
	Discount int64
	Total    int64
}

// StoreSettings holds the storefront configuration fetched from the settings
// collaborator. Missing fields are filled once via WithDefaults; callers never
// mutate a partially fetched value in place.
type StoreSettings struct {
	MaxPreOrderDays       int
	MinPreOrderHours      int
	WeekdayHours          string
	WeekendHours          string
	HolidayHours          string
	Holidays              []string
	TaxRateBps            int
	FlatDeliveryFee       int64
	FreeDeliveryThreshold int64
}

// Default storefront policy applied when the settings collaborator omits a
// field or cannot be reached.
const (
	DefaultMaxPreOrderDays       = 7
	DefaultMinPreOrderHours      = 2
	DefaultWeekdayHours          = "10:00 - 22:00"
	DefaultWeekendHours          = "10:00 - 23:00"
	DefaultTaxRateBps            = 1100
	DefaultFlatDeliveryFee       = 15_000
	DefaultFreeDeliveryThreshold = 50_000
)

// WithDefaults returns a copy of partial with every unset field replaced by
// the storefront default. The input value is never modified.
func WithDefaults(partial StoreSettings) StoreSettings {
	merged := partial
	if merged.MaxPreOrderDays <= 0 {
		merged.MaxPreOrderDays = DefaultMaxPreOrderDays
	}
	if merged.MinPreOrderHours <= 0 {
		merged.MinPreOrderHours = DefaultMinPreOrderHours
	}
	if merged.WeekdayHours == "" {
		merged.WeekdayHours = DefaultWeekdayHours
	}
	if merged.WeekendHours == "" {
		merged.WeekendHours = DefaultWeekendHours
	}
	if merged.HolidayHours == "" {
		merged.HolidayHours = merged.WeekendHours
	}
	if merged.TaxRateBps <= 0 {
		merged.TaxRateBps = DefaultTaxRateBps
	}
	if merged.FlatDeliveryFee <= 0 {
		merged.FlatDeliveryFee = DefaultFlatDeliveryFee
	}
	if merged.FreeDeliveryThreshold <= 0 {
		merged.FreeDeliveryThreshold = DefaultFreeDeliveryThreshold
	}
	if merged.Holidays != nil {
		merged.Holidays = append([]string(nil), partial.Holidays...)
	}
	return merged
}
