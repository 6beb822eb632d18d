package intake

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWasTaken(t *testing.T) {
	suppID := uuid.New()
	otherID := uuid.New()
	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	l := NewLedger(nil)
	l.Record(Event{SupplementID: suppID, Taken: true, TakenAt: day.Add(9 * time.Hour)})
	l.Record(Event{SupplementID: otherID, Taken: true, TakenAt: day.Add(10 * time.Hour)})
	l.Record(Event{SupplementID: suppID, Taken: false, TakenAt: day.AddDate(0, 0, 1)})

	if !l.WasTaken(suppID, day) {
		t.Error("expected taken event on the same calendar day to count")
	}
	if l.WasTaken(suppID, day.AddDate(0, 0, 1)) {
		t.Error("a taken=false event must not count")
	}
	if l.WasTaken(uuid.New(), day) {
		t.Error("unknown supplement must not count")
	}
}

func TestDuplicateSameDayEntries(t *testing.T) {
	suppID := uuid.New()
	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	l := NewLedger(nil)
	l.Record(Event{SupplementID: suppID, Taken: true, TakenAt: day.Add(8 * time.Hour)})
	l.Record(Event{SupplementID: suppID, Taken: true, TakenAt: day.Add(20 * time.Hour)})

	if !l.WasTaken(suppID, day) {
		t.Error("duplicates must still read as taken")
	}
	if got := len(l.Events()); got != 2 {
		t.Errorf("ledger must keep every appended event, got %d", got)
	}
}
