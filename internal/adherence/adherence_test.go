package adherence

import (
	"math"
	"testing"
	"time"
)

// Monday 2025-06-16 09:30 local.
var monday = time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC)

func TestDueOn(t *testing.T) {
	monWedFri := []int{1, 3, 5}

	if !DueOn(monWedFri, monday) {
		t.Error("expected Monday to be due for {1,3,5}")
	}
	if DueOn(monWedFri, monday.AddDate(0, 0, 1)) {
		t.Error("expected Tuesday not to be due for {1,3,5}")
	}
	if DueOn(nil, monday) {
		t.Error("empty recurrence set must never be due")
	}
}

func TestPastDue(t *testing.T) {
	if !PastDue("09:30", monday) {
		t.Error("expected 09:30 to be past due at 09:30")
	}
	if !PastDue("08:00", monday) {
		t.Error("expected 08:00 to be past due at 09:30")
	}
	if PastDue("21:00", monday) {
		t.Error("expected 21:00 not to be past due at 09:30")
	}
}

func TestRateEmptyRecurrence(t *testing.T) {
	got := Rate(nil, func(time.Time) bool { return false }, 7, monday)
	if got != 100 {
		t.Errorf("expected vacuous 100 for empty recurrence, got %v", got)
	}
}

func TestRateNoScheduledDaysInWindow(t *testing.T) {
	// Window is Tue..Mon; item only scheduled on Tuesdays means one scheduled
	// day, so shrink the window to exclude it.
	got := Rate([]int{2}, func(time.Time) bool { return false }, 1, monday)
	if got != 100 {
		t.Errorf("expected 100 when no day in window is scheduled, got %v", got)
	}
}

func TestRateMonWedFriTwoOfThree(t *testing.T) {
	// 7-day window ending Monday contains Wed, Fri and Mon as scheduled days.
	takenDays := map[string]bool{
		monday.AddDate(0, 0, -5).Format("2006-01-02"): true, // Wednesday
		monday.Format("2006-01-02"):                   true, // Monday
	}
	wasTaken := func(day time.Time) bool { return takenDays[day.Format("2006-01-02")] }

	got := Rate([]int{1, 3, 5}, wasTaken, 7, monday)
	if math.Abs(got-66.66666666666667) > 1e-9 {
		t.Errorf("expected 66.67 adherence, got %v", got)
	}
}

func TestRateFullAdherence(t *testing.T) {
	got := Rate([]int{1, 3, 5}, func(time.Time) bool { return true }, 7, monday)
	if got != 100 {
		t.Errorf("expected exactly 100 when every scheduled day is taken, got %v", got)
	}
}

func TestRateMonotonicInTaken(t *testing.T) {
	days := []int{0, 1, 2, 3, 4, 5, 6}
	prev := -1.0
	for takenCount := 0; takenCount <= 7; takenCount++ {
		n := takenCount
		wasTaken := func(time.Time) bool {
			if n > 0 {
				n--
				return true
			}
			return false
		}
		got := Rate(days, wasTaken, 7, monday)
		if got < prev {
			t.Fatalf("rate decreased from %v to %v at takenCount=%d", prev, got, takenCount)
		}
		if got < 0 || got > 100 {
			t.Fatalf("rate %v out of [0,100]", got)
		}
		prev = got
	}
}

func TestOverallToday(t *testing.T) {
	items := []TodayItem{
		{RecurrenceDays: []int{1}, TimeOfDay: "08:00", Taken: true},
		{RecurrenceDays: []int{1}, TimeOfDay: "09:00", Taken: false},
		{RecurrenceDays: []int{1}, TimeOfDay: "21:00", Taken: false}, // not yet due
		{RecurrenceDays: []int{2}, TimeOfDay: "08:00", Taken: false}, // not today
	}

	got := OverallToday(items, monday)
	if got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
}

func TestOverallTodayNothingPastDue(t *testing.T) {
	items := []TodayItem{
		{RecurrenceDays: []int{1}, TimeOfDay: "22:00", Taken: false},
	}
	if got := OverallToday(items, monday); got != 100 {
		t.Errorf("expected 100 when no dose time has passed, got %v", got)
	}
}

func TestDayBounds(t *testing.T) {
	start := StartOfDay(monday)
	end := EndOfDay(monday)

	if start.Hour() != 0 || start.Minute() != 0 {
		t.Errorf("unexpected start of day: %v", start)
	}
	if end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("unexpected end of day: %v", end)
	}
	if !SameDay(start, end) {
		t.Error("start and end of the same day must compare as the same day")
	}
	if SameDay(start, start.AddDate(0, 0, 1)) {
		t.Error("consecutive days must not compare as the same day")
	}
}
