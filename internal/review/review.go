package review

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	CatalogSupplementID  uuid.UUID `json:"catalog_supplement_id" db:"catalog_supplement_id"`
	UserID               uuid.UUID `json:"user_id" db:"user_id"`
	Username             string    `json:"username" db:"username"`
	Rating               int       `json:"rating" db:"rating"`
	Comment              string    `json:"comment" db:"comment"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// SubmitReviewResponse reports whether the submission was a first review
// (awarding points) or an edit of an existing one.
type SubmitReviewResponse struct {
	Review        *Review `json:"review"`
	PointsAwarded int     `json:"points_awarded"`
}
