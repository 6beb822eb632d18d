package reminder

import (
	"time"

	"github.com/google/uuid"
)

// DoseReminder is one registered weekly reminder slot. A supplement scheduled
// on three weekdays owns three of these rows.
type DoseReminder struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	SupplementID uuid.UUID `json:"supplement_id" db:"supplement_id"`
	Weekday      int       `json:"weekday" db:"weekday"` // 0=Sunday..6=Saturday
	TimeOfDay    string    `json:"time_of_day" db:"time_of_day"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}
