package intake

import (
	"time"

	"github.com/google/uuid"

	"vitaminderAPI/internal/adherence"
)

type Event struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	SupplementID uuid.UUID `json:"supplement_id" db:"supplement_id"`
	Taken        bool      `json:"taken" db:"taken"`
	TakenAt      time.Time `json:"taken_at" db:"taken_at"`
}

// Ledger is an append-only view over intake events. Duplicate entries for the
// same (supplement, day) are allowed and collapse to "taken at least once".
type Ledger struct {
	events []Event
}

func NewLedger(events []Event) *Ledger {
	return &Ledger{events: events}
}

// Record appends an event. There is no update or delete path.
func (l *Ledger) Record(e Event) {
	l.events = append(l.events, e)
}

// WasTaken reports whether any taken event for the supplement falls on day's
// calendar date.
func (l *Ledger) WasTaken(supplementID uuid.UUID, day time.Time) bool {
	for _, e := range l.events {
		if e.SupplementID == supplementID && e.Taken && adherence.SameDay(e.TakenAt, day) {
			return true
		}
	}
	return false
}

func (l *Ledger) Events() []Event {
	return l.events
}
