package clients

import (
	"context"

	domain "github.com/warungkita/api/internal/domain"
)

// FetchSettings pulls the store configuration (opening hours, pre-order
// window, pricing policy). The result may be partial; callers are expected to
// run it through domain.WithDefaults before use.
func (c *Client) FetchSettings(ctx context.Context) (domain.StoreSettings, error) {
	var payload struct {
		MaxPreOrderDays       int      `json:"maxPreOrderDays"`
		MinPreOrderHours      int      `json:"minPreOrderHours"`
		WeekdayHours          string   `json:"weekdayHours"`
		WeekendHours          string   `json:"weekendHours"`
		HolidayHours          string   `json:"holidayHours"`
		Holidays              []string `json:"holidays"`
		TaxRateBps            int      `json:"taxRateBps"`
		FlatDeliveryFee       int64    `json:"flatDeliveryFee"`
		FreeDeliveryThreshold int64    `json:"freeDeliveryThreshold"`
	}
	if err := c.get(ctx, "/settings", nil, &payload); err != nil {
		return domain.StoreSettings{}, err
	}

	return domain.StoreSettings{
		MaxPreOrderDays:       payload.MaxPreOrderDays,
		MinPreOrderHours:      payload.MinPreOrderHours,
		WeekdayHours:          payload.WeekdayHours,
		WeekendHours:          payload.WeekendHours,
		HolidayHours:          payload.HolidayHours,
		Holidays:              payload.Holidays,
		TaxRateBps:            payload.TaxRateBps,
		FlatDeliveryFee:       payload.FlatDeliveryFee,
		FreeDeliveryThreshold: payload.FreeDeliveryThreshold,
	}, nil
}
