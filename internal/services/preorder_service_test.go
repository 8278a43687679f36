package services

import (
	"context"
	"testing"
	"time"

	domain "github.com/warungkita/api/internal/domain"
)

func TestPreOrderServiceAvailableDates(t *testing.T) {
	// Monday 2 June 2025 in Jakarta.
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, jakarta)

	svc, err := NewPreOrderService(PreOrderServiceDeps{
		Settings: fixedSettings{value: domain.StoreSettings{MaxPreOrderDays: 3}},
		Clock:    fixedClock(now),
		Location: jakarta,
	})
	if err != nil {
		t.Fatalf("NewPreOrderService: %v", err)
	}

	dates := svc.AvailableDates(context.Background())
	if len(dates) != 3 {
		t.Fatalf("len(dates) = %d, want 3", len(dates))
	}
	if dates[0].Label != "Hari Ini" {
		t.Fatalf("dates[0].Label = %q, want Hari Ini", dates[0].Label)
	}
	if dates[1].Label != "Besok" {
		t.Fatalf("dates[1].Label = %q, want Besok", dates[1].Label)
	}
	if dates[2].Label != "Rabu, 4 Juni" {
		t.Fatalf("dates[2].Label = %q, want Rabu, 4 Juni", dates[2].Label)
	}
}

func TestPreOrderServiceTimeSlotsApplyLeadTime(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2025, 6, 2, 12, 10, 0, 0, jakarta)

	svc, err := NewPreOrderService(PreOrderServiceDeps{
		Settings: fixedSettings{value: domain.StoreSettings{
			WeekdayHours:     "10:00 - 22:00",
			MinPreOrderHours: 2,
		}},
		Clock:    fixedClock(now),
		Location: jakarta,
	})
	if err != nil {
		t.Fatalf("NewPreOrderService: %v", err)
	}

	slots := svc.AvailableTimeSlots(context.Background(), now)
	if len(slots) == 0 {
		t.Fatal("expected slots for the afternoon")
	}
	if slots[0] != "14:30" {
		t.Fatalf("slots[0] = %q, want 14:30 (12:10 + 2h lead rounded up)", slots[0])
	}
}

func TestPreOrderServiceTimeSlotsFutureDateIgnoresLead(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2025, 6, 2, 21, 30, 0, 0, jakarta)
	tomorrow := now.AddDate(0, 0, 1)

	svc, err := NewPreOrderService(PreOrderServiceDeps{
		Settings: fixedSettings{value: domain.StoreSettings{
			WeekdayHours:     "10:00 - 22:00",
			MinPreOrderHours: 2,
		}},
		Clock:    fixedClock(now),
		Location: jakarta,
	})
	if err != nil {
		t.Fatalf("NewPreOrderService: %v", err)
	}

	slots := svc.AvailableTimeSlots(context.Background(), tomorrow)
	if len(slots) != 24 {
		t.Fatalf("len(slots) = %d, want full day of 24", len(slots))
	}
	if slots[0] != "10:00" {
		t.Fatalf("slots[0] = %q, want 10:00", slots[0])
	}
}
