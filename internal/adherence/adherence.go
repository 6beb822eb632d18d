package adherence

import "time"

// Recurrence days use 0=Sunday..6=Saturday, same numbering as time.Weekday.

// DueOn reports whether an item scheduled on the given weekdays is due on day.
// An empty recurrence set is never due.
func DueOn(recurrenceDays []int, day time.Time) bool {
	wd := int(day.Weekday())
	for _, d := range recurrenceDays {
		if d == wd {
			return true
		}
	}
	return false
}

// PastDue reports whether now's clock time has reached timeOfDay ("HH:MM").
func PastDue(timeOfDay string, now time.Time) bool {
	return now.Format("15:04") >= timeOfDay
}

// Rate returns the adherence percentage over the windowDays calendar days
// ending at now, today inclusive. An item with no scheduled day inside the
// window cannot be missed, so it rates 100.
func Rate(recurrenceDays []int, wasTaken func(day time.Time) bool, windowDays int, now time.Time) float64 {
	scheduled := 0
	taken := 0
	for i := windowDays - 1; i >= 0; i-- {
		day := StartOfDay(now.AddDate(0, 0, -i))
		if !DueOn(recurrenceDays, day) {
			continue
		}
		scheduled++
		if wasTaken(day) {
			taken++
		}
	}
	if scheduled == 0 {
		return 100
	}
	return 100 * float64(taken) / float64(scheduled)
}

// TodayItem is the slice of a scheduled item the current-day overview needs.
type TodayItem struct {
	RecurrenceDays []int
	TimeOfDay      string
	Taken          bool
}

// OverallToday returns the share of items already taken among those whose
// dose time has passed today. When nothing is past due yet there is nothing
// to miss and the result is 100.
func OverallToday(items []TodayItem, now time.Time) float64 {
	due := 0
	taken := 0
	for _, it := range items {
		if !DueOn(it.RecurrenceDays, now) || !PastDue(it.TimeOfDay, now) {
			continue
		}
		due++
		if it.Taken {
			taken++
		}
	}
	if due == 0 {
		return 100
	}
	return 100 * float64(taken) / float64(due)
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
