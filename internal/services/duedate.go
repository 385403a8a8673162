package services

import (
	"time"
)

// ComputeDueDate walks forward from borrowedAt counting weekdays until
// maxWeeks' worth of working days (5 per week) have passed, then returns
// that day normalized to its last instant. The iteration bound of
// maxWeeks*7+7 calendar days is a defensive cap, not a business rule: the
// working-day target is always reached first.
func ComputeDueDate(borrowedAt time.Time, maxWeeks int) time.Time {
	current := borrowedAt
	workingDays := 0
	maxCalendarDays := maxWeeks * 7

	for i := 0; i < maxCalendarDays+7; i++ {
		current = current.AddDate(0, 0, 1)
		if isWorkingDay(current) {
			workingDays++
		}
		if workingDays >= maxWeeks*5 {
			break
		}
	}

	return endOfDay(current)
}

func isWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// endOfDay returns 23:59:59.999999 on t's calendar day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, t.Location())
}
