package report

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"vitaminderAPI/internal/intake"
	"vitaminderAPI/internal/points"
	"vitaminderAPI/internal/supplement"
)

// Monday 2025-06-16; the window is Tue 2025-06-10 .. Mon 2025-06-16.
var now = time.Date(2025, 6, 16, 18, 0, 0, 0, time.UTC)

func daily() []int { return []int{0, 1, 2, 3, 4, 5, 6} }

func takenOn(suppID uuid.UUID, days ...time.Time) []intake.Event {
	events := make([]intake.Event, 0, len(days))
	for _, d := range days {
		events = append(events, intake.Event{
			ID:           uuid.New(),
			SupplementID: suppID,
			Taken:        true,
			TakenAt:      d.Add(9 * time.Hour),
		})
	}
	return events
}

func TestBuildWindowBounds(t *testing.T) {
	r := Build(nil, nil, nil, now)

	wantStart := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if !r.StartDate.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, r.StartDate)
	}
	if r.EndDate.Day() != 16 || r.EndDate.Hour() != 23 {
		t.Errorf("expected end of day on the 16th, got %v", r.EndDate)
	}
	if r.AdherenceRate != 0 {
		t.Errorf("expected rate 0 with nothing scheduled, got %v", r.AdherenceRate)
	}
}

func TestBuildMonWedFriTwoOfThree(t *testing.T) {
	suppID := uuid.New()
	items := []supplement.UserSupplement{
		{ID: suppID, Name: "Vitamin D3", RecurrenceDays: []int{1, 3, 5}, TimeOfDay: "09:00", Dosage: 1},
	}
	events := takenOn(suppID,
		time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), // Wednesday
		time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), // Monday
	)

	r := Build(items, events, nil, now)

	if r.TotalScheduled != 3 || r.TotalTaken != 2 {
		t.Errorf("expected 2/3, got %d/%d", r.TotalTaken, r.TotalScheduled)
	}
	if math.Abs(r.AdherenceRate-66.66666666666667) > 1e-9 {
		t.Errorf("expected 66.67 rate, got %v", r.AdherenceRate)
	}
	if len(r.WorstItems) != 1 || r.WorstItems[0].ID != suppID {
		t.Fatalf("expected the item in worst list, got %+v", r.WorstItems)
	}
}

func TestBuildCapsDuplicatesAtScheduled(t *testing.T) {
	suppID := uuid.New()
	items := []supplement.UserSupplement{
		{ID: suppID, Name: "Magnesium", RecurrenceDays: []int{1}, TimeOfDay: "09:00", Dosage: 1},
	}
	monday := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	events := takenOn(suppID, monday, monday, monday)

	r := Build(items, events, nil, now)

	if r.TotalScheduled != 1 || r.TotalTaken != 1 {
		t.Errorf("expected 1/1 after capping, got %d/%d", r.TotalTaken, r.TotalScheduled)
	}
	if r.AdherenceRate != 100 {
		t.Errorf("expected 100, got %v", r.AdherenceRate)
	}
	if len(r.WorstItems) != 0 {
		t.Errorf("fully adhered item must not appear in worst list: %+v", r.WorstItems)
	}
}

func TestBuildWorstItemsOrderedAndTruncated(t *testing.T) {
	ids := make([]uuid.UUID, 5)
	items := make([]supplement.UserSupplement, 5)
	for i := range items {
		ids[i] = uuid.New()
		items[i] = supplement.UserSupplement{ID: ids[i], Name: "S", RecurrenceDays: daily(), TimeOfDay: "09:00", Dosage: 1}
	}

	var events []intake.Event
	// Item i gets i taken days out of 7, so item 0 is worst.
	for i, id := range ids {
		for d := 0; d < i; d++ {
			events = append(events, takenOn(id, time.Date(2025, 6, 10+d, 0, 0, 0, 0, time.UTC))...)
		}
	}

	r := Build(items, events, nil, now)

	if len(r.WorstItems) != 3 {
		t.Fatalf("expected worst list truncated to 3, got %d", len(r.WorstItems))
	}
	for i := 1; i < len(r.WorstItems); i++ {
		if r.WorstItems[i].Adherence < r.WorstItems[i-1].Adherence {
			t.Errorf("worst items not ascending: %+v", r.WorstItems)
		}
	}
	if r.WorstItems[0].ID != ids[0] {
		t.Errorf("expected the least adherent item first")
	}
}

func TestBuildPointsGainedInWindowOnly(t *testing.T) {
	history := []points.Entry{
		{Value: 10, CreatedAt: time.Date(2025, 6, 12, 21, 0, 0, 0, time.UTC)},
		{Value: 5, CreatedAt: time.Date(2025, 6, 16, 21, 0, 0, 0, time.UTC)},
		{Value: 10, CreatedAt: time.Date(2025, 6, 9, 21, 0, 0, 0, time.UTC)}, // before window
	}

	r := Build(nil, nil, history, now)

	if r.PointsGained != 15 {
		t.Errorf("expected 15 points in window, got %d", r.PointsGained)
	}
}

func TestBuildIdempotent(t *testing.T) {
	suppID := uuid.New()
	items := []supplement.UserSupplement{
		{ID: suppID, Name: "Zinc", RecurrenceDays: []int{1, 3, 5}, TimeOfDay: "09:00", Dosage: 1},
	}
	events := takenOn(suppID, time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC))

	a := Build(items, events, nil, now)
	b := Build(items, events, nil, now)

	if a.TotalScheduled != b.TotalScheduled || a.TotalTaken != b.TotalTaken ||
		a.AdherenceRate != b.AdherenceRate || a.PointsGained != b.PointsGained {
		t.Errorf("same inputs produced different reports: %+v vs %+v", a, b)
	}
}
