package services

import (
	"context"
	"errors"
	"time"

	"github.com/warungkita/api/internal/preorder"
)

var (
	errPreOrderSettingsRequired = errors.New("preorder service: settings service is required")
	errPreOrderClockRequired    = errors.New("preorder service: clock is required")
)

// PreOrderServiceDeps wires the settings source and the store-local clock.
type PreOrderServiceDeps struct {
	Settings SettingsService
	Clock    func() time.Time
	Location *time.Location
}

type preOrderService struct {
	settings SettingsService
	now      func() time.Time
	loc      *time.Location
}

// NewPreOrderService constructs a PreOrderService enforcing dependency validation.
func NewPreOrderService(deps PreOrderServiceDeps) (PreOrderService, error) {
	if deps.Settings == nil {
		return nil, errPreOrderSettingsRequired
	}
	if deps.Clock == nil {
		return nil, errPreOrderClockRequired
	}

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	return &preOrderService{
		settings: deps.Settings,
		now:      deps.Clock,
		loc:      loc,
	}, nil
}

// AvailableDates returns the selectable pre-order dates starting today,
// bounded by the store's pre-order window.
func (s *preOrderService) AvailableDates(ctx context.Context) []DateOption {
	settings := s.settings.Settings(ctx)
	today := s.now().In(s.loc)
	return preorder.AvailableDates(today, settings.MaxPreOrderDays)
}

// AvailableTimeSlots returns the selectable slots for the date, respecting
// store hours and the minimum lead time.
func (s *preOrderService) AvailableTimeSlots(ctx context.Context, date time.Time) []string {
	settings := s.settings.Settings(ctx)
	now := s.now().In(s.loc)
	return preorder.AvailableTimeSlots(date.In(s.loc), settings, now)
}
