package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Supplement is one catalog entry offered for addition or replenishment.
// The catalog is maintained separately from any user's own schedule.
type Supplement struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Type          string    `json:"type" db:"type"`
	Objectives    []string  `json:"objectives" db:"objectives"`
	PriceEstimate int       `json:"price_estimate" db:"price_estimate"`
	BaseScore     int       `json:"base_score" db:"base_score"` // 0-10
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Recommended is a catalog entry paired with the reason it was suggested.
type Recommended struct {
	Supplement
	Reason string `json:"reason"`
}

type CreateSupplementRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Objectives    []string `json:"objectives"`
	PriceEstimate int      `json:"price_estimate"`
	BaseScore     int      `json:"base_score"`
}

type UpdateSupplementRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Type          *string  `json:"type,omitempty"`
	Objectives    []string `json:"objectives,omitempty"`
	PriceEstimate *int     `json:"price_estimate,omitempty"`
	BaseScore     *int     `json:"base_score,omitempty"`
}
