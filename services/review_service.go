package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitaminderAPI/internal/points"
	"vitaminderAPI/internal/review"
)

type ReviewService struct {
	db     *pgxpool.Pool
	points *PointsService
}

func NewReviewService(db *pgxpool.Pool, pointsService *PointsService) *ReviewService {
	return &ReviewService{db: db, points: pointsService}
}

// SubmitReview inserts or updates the user's review of a catalog supplement.
// Only the first review of an item earns points; edits earn nothing.
func (s *ReviewService) SubmitReview(ctx context.Context, clerkID string, catalogSupplementID uuid.UUID, req *review.SubmitReviewRequest) (*review.SubmitReviewResponse, error) {
	var userID uuid.UUID
	var username string
	err := s.db.QueryRow(ctx, `SELECT id, username FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reviews
			WHERE catalog_supplement_id = $1 AND user_id = $2
		)
	`, catalogSupplementID, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	r := &review.Review{
		CatalogSupplementID: catalogSupplementID,
		UserID:              userID,
		Username:            username,
		Rating:              req.Rating,
		Comment:             req.Comment,
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO reviews (id, catalog_supplement_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (catalog_supplement_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, uuid.New(), catalogSupplementID, userID, req.Rating, req.Comment).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	awarded := 0
	if !exists {
		if _, err := s.points.AddPoints(ctx, clerkID, points.ReviewPoints, points.ReasonReview); err != nil {
			log.Printf("SubmitReview: failed to award points to %s: %v", clerkID, err)
		} else {
			awarded = points.ReviewPoints
		}
	}

	return &review.SubmitReviewResponse{
		Review:        r,
		PointsAwarded: awarded,
	}, nil
}

// GetReviews lists a catalog supplement's reviews, newest first.
func (s *ReviewService) GetReviews(ctx context.Context, catalogSupplementID uuid.UUID) ([]*review.Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.catalog_supplement_id, r.user_id, u.username, r.rating, r.comment, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.catalog_supplement_id = $1
		ORDER BY r.created_at DESC
	`, catalogSupplementID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// GetRecentReviews is the community feed across all catalog supplements.
func (s *ReviewService) GetRecentReviews(ctx context.Context, limit int) ([]*review.Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.catalog_supplement_id, r.user_id, u.username, r.rating, r.comment, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent reviews: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

func (s *ReviewService) DeleteReview(ctx context.Context, clerkID string, reviewID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
		DELETE FROM reviews r
		USING users u
		WHERE r.user_id = u.id
			AND u.clerk_id = $1
			AND r.id = $2
	`, clerkID, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review not found")
	}

	return nil
}

func scanReviews(rows pgx.Rows) ([]*review.Review, error) {
	var reviews []*review.Review
	for rows.Next() {
		r := &review.Review{}
		err := rows.Scan(
			&r.ID,
			&r.CatalogSupplementID,
			&r.UserID,
			&r.Username,
			&r.Rating,
			&r.Comment,
			&r.CreatedAt,
			&r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	if reviews == nil {
		reviews = []*review.Review{}
	}

	return reviews, nil
}
