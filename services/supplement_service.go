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
	"vitaminderAPI/internal/intake"
	"vitaminderAPI/internal/supplement"
)

type SupplementService struct {
	db        *pgxpool.Pool
	points    *PointsService
	reminders *ReminderService
}

func NewSupplementService(db *pgxpool.Pool, pointsService *PointsService, reminderService *ReminderService) *SupplementService {
	return &SupplementService{
		db:        db,
		points:    pointsService,
		reminders: reminderService,
	}
}

func (s *SupplementService) userIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to find user: %w", err)
	}
	return userID, nil
}

func (s *SupplementService) CreateSupplement(ctx context.Context, clerkID string, req *supplement.CreateSupplementRequest) (*supplement.UserSupplement, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	supp := &supplement.UserSupplement{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           req.Name,
		RecurrenceDays: req.RecurrenceDays,
		TimeOfDay:      req.TimeOfDay,
		Dosage:         req.Dosage,
	}

	query := `
	INSERT INTO user_supplements (id, user_id, name, recurrence_days, time_of_day, dosage, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query,
		supp.ID, supp.UserID, supp.Name, supp.RecurrenceDays, supp.TimeOfDay, supp.Dosage,
	).Scan(&supp.CreatedAt, &supp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create supplement: %w", err)
	}

	if err := s.reminders.RegisterReminders(ctx, userID, supp.ID, supp.TimeOfDay, supp.RecurrenceDays); err != nil {
		log.Printf("CreateSupplement: failed to register reminders for %s: %v", supp.ID, err)
	}

	return supp, nil
}

func (s *SupplementService) GetUserSupplements(ctx context.Context, clerkID string) ([]*supplement.UserSupplement, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, recurrence_days, time_of_day, dosage, created_at, updated_at
		FROM user_supplements
		WHERE user_id = $1
		ORDER BY time_of_day, name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplements: %w", err)
	}
	defer rows.Close()

	var supplements []*supplement.UserSupplement
	for rows.Next() {
		supp := &supplement.UserSupplement{}
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
		supplements = append(supplements, supp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating supplements: %w", err)
	}

	if supplements == nil {
		supplements = []*supplement.UserSupplement{}
	}

	return supplements, nil
}

func (s *SupplementService) getSupplement(ctx context.Context, userID, supplementID uuid.UUID) (*supplement.UserSupplement, error) {
	supp := &supplement.UserSupplement{}
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, recurrence_days, time_of_day, dosage, created_at, updated_at
		FROM user_supplements
		WHERE id = $1 AND user_id = $2
	`, supplementID, userID).Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplement not found")
		}
		return nil, fmt.Errorf("failed to get supplement: %w", err)
	}
	return supp, nil
}

func (s *SupplementService) UpdateSupplement(ctx context.Context, clerkID string, supplementID uuid.UUID, req *supplement.UpdateSupplementRequest) (*supplement.UserSupplement, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	supp, err := s.getSupplement(ctx, userID, supplementID)
	if err != nil {
		return nil, err
	}

	scheduleChanged := false
	if req.Name != nil {
		supp.Name = *req.Name
		scheduleChanged = true
	}
	if req.RecurrenceDays != nil {
		supp.RecurrenceDays = req.RecurrenceDays
		scheduleChanged = true
	}
	if req.TimeOfDay != nil {
		supp.TimeOfDay = *req.TimeOfDay
		scheduleChanged = true
	}
	if req.Dosage != nil {
		supp.Dosage = *req.Dosage
	}

	err = s.db.QueryRow(ctx, `
		UPDATE user_supplements
		SET name = $3, recurrence_days = $4, time_of_day = $5, dosage = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`, supp.ID, userID, supp.Name, supp.RecurrenceDays, supp.TimeOfDay, supp.Dosage).Scan(&supp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update supplement: %w", err)
	}

	if scheduleChanged {
		if err := s.reminders.CancelReminders(ctx, supp.ID); err != nil {
			log.Printf("UpdateSupplement: failed to cancel reminders for %s: %v", supp.ID, err)
		}
		if err := s.reminders.RegisterReminders(ctx, userID, supp.ID, supp.TimeOfDay, supp.RecurrenceDays); err != nil {
			log.Printf("UpdateSupplement: failed to register reminders for %s: %v", supp.ID, err)
		}
	}

	return supp, nil
}

func (s *SupplementService) DeleteSupplement(ctx context.Context, clerkID string, supplementID uuid.UUID) error {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM user_supplements
		WHERE id = $1 AND user_id = $2
	`, supplementID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete supplement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("supplement not found")
	}

	if err := s.reminders.CancelReminders(ctx, supplementID); err != nil {
		log.Printf("DeleteSupplement: failed to cancel reminders for %s: %v", supplementID, err)
	}

	return nil
}

// MarkTaken appends a taken intake event and then runs the daily adherence
// check. The points update is awaited so the caller observes its outcome.
func (s *SupplementService) MarkTaken(ctx context.Context, clerkID string, supplementID uuid.UUID, now time.Time) (*intake.Event, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if _, err := s.getSupplement(ctx, userID, supplementID); err != nil {
		return nil, err
	}

	event := &intake.Event{
		ID:           uuid.New(),
		UserID:       userID,
		SupplementID: supplementID,
		Taken:        true,
		TakenAt:      now,
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO intake_events (id, user_id, supplement_id, taken, taken_at)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, event.UserID, event.SupplementID, event.Taken, event.TakenAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record intake: %w", err)
	}

	if _, err := s.points.ProcessDailyAdherence(ctx, clerkID, now); err != nil {
		return nil, fmt.Errorf("failed to process daily adherence: %w", err)
	}

	return event, nil
}

// GetIntakes returns the user's intake events inside [start, end].
func (s *SupplementService) GetIntakes(ctx context.Context, clerkID string, start, end time.Time) ([]intake.Event, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.intakesForUser(ctx, userID, start, end)
}

func (s *SupplementService) intakesForUser(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]intake.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, supplement_id, taken, taken_at
		FROM intake_events
		WHERE user_id = $1
			AND taken_at >= $2
			AND taken_at <= $3
		ORDER BY taken_at
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intakes: %w", err)
	}

	return events, nil
}

// GetToday annotates each supplement with its current-day state and computes
// the overall adherence among doses already past due.
func (s *SupplementService) GetToday(ctx context.Context, clerkID string, now time.Time) (*supplement.TodayResponse, error) {
	supplements, err := s.GetUserSupplements(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	events, err := s.intakesForUser(ctx, userID, adherence.StartOfDay(now), adherence.EndOfDay(now))
	if err != nil {
		return nil, err
	}
	ledger := intake.NewLedger(events)

	today := make([]*supplement.TodaySupplement, 0, len(supplements))
	overall := make([]adherence.TodayItem, 0, len(supplements))
	for _, supp := range supplements {
		taken := ledger.WasTaken(supp.ID, now)
		today = append(today, &supplement.TodaySupplement{
			UserSupplement: *supp,
			DueToday:       adherence.DueOn(supp.RecurrenceDays, now),
			PastDue:        adherence.PastDue(supp.TimeOfDay, now),
			TakenToday:     taken,
		})
		overall = append(overall, adherence.TodayItem{
			RecurrenceDays: supp.RecurrenceDays,
			TimeOfDay:      supp.TimeOfDay,
			Taken:          taken,
		})
	}

	return &supplement.TodayResponse{
		Supplements:      today,
		OverallAdherence: adherence.OverallToday(overall, now),
	}, nil
}

// GetAdherence computes a supplement's adherence percentage over the trailing
// window ending today.
func (s *SupplementService) GetAdherence(ctx context.Context, clerkID string, supplementID uuid.UUID, windowDays int, now time.Time) (*supplement.AdherenceResponse, error) {
	userID, err := s.userIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	supp, err := s.getSupplement(ctx, userID, supplementID)
	if err != nil {
		return nil, err
	}

	start := adherence.StartOfDay(now.AddDate(0, 0, -(windowDays - 1)))
	events, err := s.intakesForUser(ctx, userID, start, adherence.EndOfDay(now))
	if err != nil {
		return nil, err
	}
	ledger := intake.NewLedger(events)

	rate := adherence.Rate(supp.RecurrenceDays, func(day time.Time) bool {
		return ledger.WasTaken(supp.ID, day)
	}, windowDays, now)

	return &supplement.AdherenceResponse{
		SupplementID: supp.ID.String(),
		WindowDays:   windowDays,
		Rate:         rate,
	}, nil
}
