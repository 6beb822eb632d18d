package supplement

import (
	"time"

	"github.com/google/uuid"
)

type UserSupplement struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Name           string    `json:"name" db:"name"`
	RecurrenceDays []int     `json:"recurrence_days" db:"recurrence_days"` // 0=Sunday..6=Saturday
	TimeOfDay      string    `json:"time_of_day" db:"time_of_day"`         // HH:MM
	Dosage         int       `json:"dosage" db:"dosage"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
