package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitaminderAPI/internal/adherence"
	"vitaminderAPI/internal/intake"
	"vitaminderAPI/internal/report"
	"vitaminderAPI/internal/supplement"
)

type ReportService struct {
	db     *pgxpool.Pool
	points *PointsService
}

func NewReportService(db *pgxpool.Pool, pointsService *PointsService) *ReportService {
	return &ReportService{db: db, points: pointsService}
}

// GenerateWeeklyReport aggregates the trailing 7-day window ending at now and
// persists a snapshot keyed by (user, end date). Regenerating the same window
// keeps the first stored snapshot.
func (s *ReportService) GenerateWeeklyReport(ctx context.Context, clerkID string, now time.Time) (*report.WeeklyReport, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	start := adherence.StartOfDay(now.AddDate(0, 0, -6))
	end := adherence.EndOfDay(now)

	items, err := s.supplementsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.intakesForUser(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	history, err := s.points.GetPointsHistory(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	weekly := report.Build(items, events, history, now)

	if err := s.saveReport(ctx, userID, weekly); err != nil {
		return nil, err
	}

	return weekly, nil
}

func (s *ReportService) saveReport(ctx context.Context, userID uuid.UUID, weekly *report.WeeklyReport) error {
	worstJSON, err := json.Marshal(weekly.WorstItems)
	if err != nil {
		return fmt.Errorf("failed to encode worst items: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO weekly_reports (user_id, start_date, end_date, total_scheduled, total_taken, adherence_rate, points_gained, worst_items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id, end_date) DO NOTHING
	`, userID, weekly.StartDate, weekly.EndDate, weekly.TotalScheduled, weekly.TotalTaken, weekly.AdherenceRate, weekly.PointsGained, worstJSON)
	if err != nil {
		return fmt.Errorf("failed to save weekly report: %w", err)
	}

	return nil
}

// GetLastReports returns the most recent stored snapshots, newest first.
func (s *ReportService) GetLastReports(ctx context.Context, clerkID string, limit int) ([]*report.WeeklyReport, error) {
	rows, err := s.db.Query(ctx, `
		SELECT wr.start_date, wr.end_date, wr.total_scheduled, wr.total_taken, wr.adherence_rate, wr.points_gained, wr.worst_items
		FROM weekly_reports wr
		JOIN users u ON u.id = wr.user_id
		WHERE u.clerk_id = $1
		ORDER BY wr.end_date DESC
		LIMIT $2
	`, clerkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	defer rows.Close()

	var reports []*report.WeeklyReport
	for rows.Next() {
		r := &report.WeeklyReport{}
		var worstJSON []byte
		err := rows.Scan(
			&r.StartDate,
			&r.EndDate,
			&r.TotalScheduled,
			&r.TotalTaken,
			&r.AdherenceRate,
			&r.PointsGained,
			&worstJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if len(worstJSON) > 0 {
			if err := json.Unmarshal(worstJSON, &r.WorstItems); err != nil {
				return nil, fmt.Errorf("failed to decode worst items: %w", err)
			}
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	if reports == nil {
		reports = []*report.WeeklyReport{}
	}

	return reports, nil
}

func (s *ReportService) supplementsForUser(ctx context.Context, userID uuid.UUID) ([]supplement.UserSupplement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, recurrence_days, time_of_day, dosage, created_at, updated_at
		FROM user_supplements
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplements: %w", err)
	}
	defer rows.Close()

	var items []supplement.UserSupplement
	for rows.Next() {
		var supp supplement.UserSupplement
		err := rows.Scan(
			&supp.ID,
			&supp.UserID,
			&supp.Name,
			&supp.RecurrenceDays,
			&supp.TimeOfDay,
			&supp.Dosage,
			&supp.CreatedAt,
			&supp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplement: %w", err)
		}
		items = append(items, supp)
	}

	return items, rows.Err()
}

func (s *ReportService) intakesForUser(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]intake.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, supplement_id, taken, taken_at
		FROM intake_events
		WHERE user_id = $1
			AND taken_at >= $2
			AND taken_at <= $3
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intakes: %w", err)
	}
	defer rows.Close()

	var events []intake.Event
	for rows.Next() {
		var e intake.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.SupplementID, &e.Taken, &e.TakenAt); err != nil {
			return nil, fmt.Errorf("failed to scan intake: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
