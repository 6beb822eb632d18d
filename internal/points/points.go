package points

import (
	"time"

	"github.com/google/uuid"

	"vitaminderAPI/internal/adherence"
)

const (
	DailyAdherencePoints = 10
	StreakBonusPoints    = 5
	ReviewPoints         = 10

	streakBonusEvery = 3
)

const (
	ReasonDailyAdherence = "daily_adherence"
	ReasonStreakBonus    = "streak_bonus"
	ReasonReview         = "review"
)

// Ledger is a user's gamification state. TotalPoints only ever grows; there
// is no decrement path.
type Ledger struct {
	TotalPoints       int        `json:"total_points" db:"points"`
	StreakCount       int        `json:"streak_count" db:"streak_count"`
	LastAdherenceDate *time.Time `json:"last_adherence_date" db:"last_adherence_date"`
}

// Entry is one awarded delta, persisted as points history.
type Entry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Value     int       `json:"value" db:"value"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Add increments the ledger unconditionally and returns the history entry.
func Add(l Ledger, value int, reason string, now time.Time) (Ledger, Entry) {
	l.TotalPoints += value
	return l, Entry{Value: value, Reason: reason, CreatedAt: now}
}

// ApplyDailyAdherence awards the daily points and advances the streak when
// every dose due today was taken. A partial day is left alone, no penalty.
// Calling it again on the same calendar day is a no-op.
func ApplyDailyAdherence(l Ledger, allTaken bool, now time.Time) (Ledger, []Entry) {
	today := adherence.StartOfDay(now)
	if l.LastAdherenceDate != nil && adherence.SameDay(*l.LastAdherenceDate, today) {
		return l, nil
	}
	if !allTaken {
		return l, nil
	}

	var entries []Entry
	var e Entry
	l, e = Add(l, DailyAdherencePoints, ReasonDailyAdherence, now)
	entries = append(entries, e)

	yesterday := today.AddDate(0, 0, -1)
	if l.LastAdherenceDate != nil && adherence.SameDay(*l.LastAdherenceDate, yesterday) {
		l.StreakCount++
	} else {
		l.StreakCount = 1
	}
	if l.StreakCount%streakBonusEvery == 0 {
		l, e = Add(l, StreakBonusPoints, ReasonStreakBonus, now)
		entries = append(entries, e)
	}

	l.LastAdherenceDate = &today
	return l, entries
}
