// Package preorder generates the selectable dates and times for scheduled
// orders. Generation is pure: every sequence is recomputed from the supplied
// clock value, and store hours arrive as the "open - close" strings used by
// the settings collaborator.
package preorder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "github.com/warungkita/api/internal/domain"
)

const slotIntervalMinutes = 30

var dayNames = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// AvailableDates lists maxDays consecutive calendar days starting at today.
// Day 0 is labelled "Hari Ini", day 1 "Besok", later days get a localized
// weekday and date label.
func AvailableDates(today time.Time, maxDays int) []domain.DateOption {
	if maxDays <= 0 {
		return nil
	}

	start := midnight(today)
	options := make([]domain.DateOption, 0, maxDays)
	for offset := 0; offset < maxDays; offset++ {
		date := start.AddDate(0, 0, offset)
		options = append(options, domain.DateOption{Date: date, Label: dateLabel(date, offset)})
	}
	return options
}

func dateLabel(date time.Time, offset int) string {
	switch offset {
	case 0:
		return "Hari Ini"
	case 1:
		return "Besok"
	default:
		return fmt.Sprintf("%s, %d %s", dayNames[date.Weekday()], date.Day(), monthNames[date.Month()-1])
	}
}

// AvailableTimeSlots enumerates every 30-minute boundary inside the store's
// opening window for date, dropping slots closer than the minimum lead time
// when date is today. The sequence is empty once the whole window is excluded,
// for example when asking for today's slots after closing minus lead time.
func AvailableTimeSlots(date time.Time, settings domain.StoreSettings, now time.Time) []string {
	open, close, err := ParseHours(hoursFor(date, settings))
	if err != nil {
		return nil
	}

	cutoff := -1
	if sameDay(date, now) {
		lead := now.Add(time.Duration(settings.MinPreOrderHours) * time.Hour)
		cutoff = lead.Hour()*60 + lead.Minute()
		if !sameDay(date, lead) {
			// Lead time pushes past midnight; nothing selectable today.
			return nil
		}
	}

	var slots []string
	for minute := open; minute < close; minute += slotIntervalMinutes {
		if minute < cutoff {
			continue
		}
		slots = append(slots, fmt.Sprintf("%02d:%02d", minute/60, minute%60))
	}
	return slots
}

// ParseHours splits an "open - close" opening-hours string into minute
// offsets from midnight.
func ParseHours(hours string) (open, close int, err error) {
	parts := strings.Split(hours, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("preorder: malformed opening hours %q", hours)
	}

	open, err = parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	close, err = parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if close <= open {
		return 0, 0, fmt.Errorf("preorder: opening hours %q close before they open", hours)
	}
	return open, close, nil
}

func parseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("preorder: malformed clock value %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("preorder: malformed hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("preorder: malformed minute in %q", value)
	}
	return hour*60 + minute, nil
}

func hoursFor(date time.Time, settings domain.StoreSettings) string {
	if isHoliday(date, settings.Holidays) {
		return settings.HolidayHours
	}
	if weekday := date.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
		return settings.WeekendHours
	}
	return settings.WeekdayHours
}

func isHoliday(date time.Time, holidays []string) bool {
	if len(holidays) == 0 {
		return false
	}
	day := date.Format("2006-01-02")
	for _, holiday := range holidays {
		if strings.TrimSpace(holiday) == day {
			return true
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
