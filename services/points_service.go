package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitaminderAPI/internal/adherence"
	"vitaminderAPI/internal/points"
	"vitaminderAPI/utils"
)

type PointsService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewPointsService(db *pgxpool.Pool) *PointsService {
	return &PointsService{db: db}
}

func (s *PointsService) SetPushProvider(p PushProvider) {
	s.push = p
}

// AddPoints increments the user's total and records the delta in history.
// Both writes happen in one transaction.
func (s *PointsService) AddPoints(ctx context.Context, clerkID string, value int, reason string) (int, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user not found")
		}
		return 0, fmt.Errorf("failed to find user: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET points = points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING points
	`, userID, value).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to add points: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO points_history (id, user_id, value, reason, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, uuid.New(), userID, value, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to record points history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit points: %w", err)
	}

	return total, nil
}

// ProcessDailyAdherence checks whether every dose due today has been taken
// and, if so, awards the daily points and advances the streak. Running it
// again on the same day changes nothing.
func (s *PointsService) ProcessDailyAdherence(ctx context.Context, clerkID string, now time.Time) (*points.Ledger, error) {
	var userID uuid.UUID
	ledger := points.Ledger{}
	err := s.db.QueryRow(ctx, `
		SELECT id, points, streak_count, last_adherence_date
		FROM users
		WHERE clerk_id = $1
	`, clerkID).Scan(&userID, &ledger.TotalPoints, &ledger.StreakCount, &ledger.LastAdherenceDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load points ledger: %w", err)
	}

	today := adherence.StartOfDay(now)
	if ledger.LastAdherenceDate != nil && adherence.SameDay(*ledger.LastAdherenceDate, today) {
		return &ledger, nil
	}

	allTaken, err := s.allDueTaken(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	updated, entries := points.ApplyDailyAdherence(ledger, allTaken, now)
	if len(entries) == 0 {
		return &ledger, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET points = $2, streak_count = $3, last_adherence_date = $4, updated_at = NOW()
		WHERE id = $1
	`, userID, updated.TotalPoints, updated.StreakCount, updated.LastAdherenceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to persist points ledger: %w", err)
	}

	for _, e := range entries {
		_, err = tx.Exec(ctx, `
			INSERT INTO points_history (id, user_id, value, reason, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), userID, e.Value, e.Reason, e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to record points history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit daily adherence: %w", err)
	}

	log.Printf("ProcessDailyAdherence: user %s streak=%d points=%d", clerkID, updated.StreakCount, updated.TotalPoints)

	for _, e := range entries {
		if e.Reason == points.ReasonStreakBonus {
			go utils.StreakMilestoneReached(s.db, s.push, userID, updated.StreakCount)
			break
		}
	}

	return &updated, nil
}

// allDueTaken reports whether every supplement due today has at least one
// taken intake event today.
func (s *PointsService) allDueTaken(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	weekday := int(now.Weekday())

	var missing int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM user_supplements us
		WHERE us.user_id = $1
			AND $2 = ANY(us.recurrence_days)
			AND NOT EXISTS (
				SELECT 1 FROM intake_events ie
				WHERE ie.supplement_id = us.id
					AND ie.taken = true
					AND ie.taken_at >= $3
					AND ie.taken_at <= $4
			)
	`, userID, weekday, adherence.StartOfDay(now), adherence.EndOfDay(now)).Scan(&missing)
	if err != nil {
		return false, fmt.Errorf("failed to check due intakes: %w", err)
	}

	return missing == 0, nil
}

// GetPointsHistory returns the awarded deltas inside [start, end].
func (s *PointsService) GetPointsHistory(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]points.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, value, reason, created_at
		FROM points_history
		WHERE user_id = $1
			AND created_at >= $2
			AND created_at <= $3
		ORDER BY created_at
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch points history: %w", err)
	}
	defer rows.Close()

	var entries []points.Entry
	for rows.Next() {
		var e points.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Value, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan points entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating points history: %w", err)
	}

	return entries, nil
}
