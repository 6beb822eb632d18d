package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"vitaminderAPI/internal/adherence"
	"vitaminderAPI/internal/intake"
	"vitaminderAPI/internal/points"
	"vitaminderAPI/internal/supplement"
)

type WorstItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Adherence float64   `json:"adherence"`
}

type WeeklyReport struct {
	StartDate      time.Time   `json:"start_date" db:"start_date"`
	EndDate        time.Time   `json:"end_date" db:"end_date"`
	TotalScheduled int         `json:"total_scheduled" db:"total_scheduled"`
	TotalTaken     int         `json:"total_taken" db:"total_taken"`
	AdherenceRate  float64     `json:"adherence_rate" db:"adherence_rate"`
	PointsGained   int         `json:"points_gained" db:"points_gained"`
	WorstItems     []WorstItem `json:"worst_items" db:"worst_items"`
}

// Build aggregates the trailing 7-day window ending at now. The same inputs
// always produce the same report.
func Build(items []supplement.UserSupplement, events []intake.Event, history []points.Entry, now time.Time) *WeeklyReport {
	end := adherence.EndOfDay(now)
	start := adherence.StartOfDay(now.AddDate(0, 0, -6))

	totalScheduled := 0
	totalTaken := 0
	perItem := make([]WorstItem, 0, len(items))

	for _, s := range items {
		scheduled := 0
		for i := 0; i < 7; i++ {
			if adherence.DueOn(s.RecurrenceDays, start.AddDate(0, 0, i)) {
				scheduled++
			}
		}

		taken := 0
		for _, e := range events {
			if e.SupplementID == s.ID && e.Taken && !e.TakenAt.Before(start) && !e.TakenAt.After(end) {
				taken++
			}
		}
		// Re-logging the same dose must not push an item past 100%.
		if taken > scheduled {
			taken = scheduled
		}

		totalScheduled += scheduled
		totalTaken += taken

		rate := 100.0
		if scheduled > 0 {
			rate = 100 * float64(taken) / float64(scheduled)
		}
		perItem = append(perItem, WorstItem{ID: s.ID, Name: s.Name, Adherence: rate})
	}

	pointsGained := 0
	for _, e := range history {
		if !e.CreatedAt.Before(start) && !e.CreatedAt.After(end) {
			pointsGained += e.Value
		}
	}

	sort.SliceStable(perItem, func(i, j int) bool {
		return perItem[i].Adherence < perItem[j].Adherence
	})
	worst := make([]WorstItem, 0, 3)
	for _, it := range perItem {
		if it.Adherence < 100 && len(worst) < 3 {
			worst = append(worst, it)
		}
	}

	rate := 0.0
	if totalScheduled > 0 {
		rate = 100 * float64(totalTaken) / float64(totalScheduled)
	}

	return &WeeklyReport{
		StartDate:      start,
		EndDate:        end,
		TotalScheduled: totalScheduled,
		TotalTaken:     totalTaken,
		AdherenceRate:  rate,
		PointsGained:   pointsGained,
		WorstItems:     worst,
	}
}
