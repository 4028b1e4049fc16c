// Package calendar decides whether a business is open on a date and at a time.
//
// The date and the hour checks are separate predicates. Callers compose them so that a
// rejection can name the axis that failed.
package calendar

import (
	"github.com/tablebook/backend/internal/models"
	"github.com/tablebook/backend/internal/timenorm"
)

// IsDateAvailable reports whether b accepts bookings on date. Malformed dates are closed.
func IsDateAvailable(b *models.Business, date string) bool {
	if b == nil {
		return false
	}
	normalized, ok := timenorm.NormalizeDate(date)
	if !ok {
		return false
	}
	key, _ := timenorm.DateKey(normalized)

	if b.OperatingDays != nil {
		weekday, _ := timenorm.Weekday(normalized)
		if !containsDay(b.OperatingDays, weekday) {
			return false
		}
	}

	for _, holiday := range b.Holidays {
		if holiday == normalized {
			return false
		}
	}

	for _, v := range b.Vacations {
		start, okStart := timenorm.DateKey(v.Start)
		end, okEnd := timenorm.DateKey(v.End)
		if !okStart || !okEnd {
			continue
		}
		if key >= start && key <= end {
			return false
		}
	}

	if b.Closure.Active && withinClosure(b.Closure, key) {
		return false
	}
	return true
}

// IsWithinHours reports whether the wall-clock time falls inside the morning or the
// afternoon window, bounds inclusive. A business with neither window fully set has no
// hour restriction.
func IsWithinHours(b *models.Business, clock string) bool {
	if b == nil {
		return false
	}
	minutes, ok := timenorm.ParseTimeToMinutes(clock)
	if !ok {
		return false
	}

	morningStart, morningEnd, hasMorning := window(b.MorningOpen, b.MorningClose)
	afternoonStart, afternoonEnd, hasAfternoon := window(b.AfternoonOpen, b.AfternoonClose)
	if !hasMorning && !hasAfternoon {
		return true
	}
	if hasMorning && minutes >= morningStart && minutes <= morningEnd {
		return true
	}
	return hasAfternoon && minutes >= afternoonStart && minutes <= afternoonEnd
}

func window(from, to string) (start, end int, ok bool) {
	start, okStart := timenorm.ParseTimeToMinutes(from)
	end, okEnd := timenorm.ParseTimeToMinutes(to)
	return start, end, okStart && okEnd
}

// withinClosure treats a missing or malformed bound as unbounded on that side.
func withinClosure(c models.TemporaryClosure, key int) bool {
	if from, ok := timenorm.DateKey(c.From); ok && key < from {
		return false
	}
	if until, ok := timenorm.DateKey(c.Until); ok && key > until {
		return false
	}
	return true
}

func containsDay(days []int, weekday int) bool {
	for _, d := range days {
		if d == weekday {
			return true
		}
	}
	return false
}
