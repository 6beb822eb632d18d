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
	"vitaminderAPI/internal/reminder"
)

// PushProvider delivers a notification to a set of device tokens. The FCM
// client satisfies it; tests substitute a recorder.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []reminder.DeviceToken, title, body string, data map[string]any) error
}

type ReminderService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewReminderService(db *pgxpool.Pool) *ReminderService {
	return &ReminderService{db: db}
}

func (s *ReminderService) SetPushProvider(p PushProvider) {
	s.push = p
}

// RegisterReminders replaces a supplement's reminder slots with one row per
// scheduled weekday.
func (s *ReminderService) RegisterReminders(ctx context.Context, userID, supplementID uuid.UUID, timeOfDay string, recurrenceDays []int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM dose_reminders WHERE supplement_id = $1`, supplementID)
	if err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}

	for _, weekday := range recurrenceDays {
		_, err = tx.Exec(ctx, `
			INSERT INTO dose_reminders (id, user_id, supplement_id, weekday, time_of_day, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, uuid.New(), userID, supplementID, weekday, timeOfDay)
		if err != nil {
			return fmt.Errorf("failed to register reminder: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reminders: %w", err)
	}

	return nil
}

func (s *ReminderService) CancelReminders(ctx context.Context, supplementID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM dose_reminders WHERE supplement_id = $1`, supplementID)
	if err != nil {
		return fmt.Errorf("failed to cancel reminders: %w", err)
	}
	return nil
}

func (s *ReminderService) GetReminders(ctx context.Context, clerkID string) ([]*reminder.DoseReminder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT dr.id, dr.user_id, dr.supplement_id, dr.weekday, dr.time_of_day, dr.created_at
		FROM dose_reminders dr
		JOIN users u ON u.id = dr.user_id
		WHERE u.clerk_id = $1
		ORDER BY dr.weekday, dr.time_of_day
	`, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*reminder.DoseReminder
	for rows.Next() {
		r := &reminder.DoseReminder{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.SupplementID, &r.Weekday, &r.TimeOfDay, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	if reminders == nil {
		reminders = []*reminder.DoseReminder{}
	}

	return reminders, nil
}

// RegisterDevice stores a push token for the user. Re-registering the same
// token moves it to the current user.
func (s *ReminderService) RegisterDevice(ctx context.Context, clerkID string, req *reminder.RegisterDeviceRequest) (*reminder.DeviceToken, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	token := &reminder.DeviceToken{
		ID:       uuid.New(),
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO device_tokens (id, user_id, token, platform, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
		RETURNING id, created_at
	`, token.ID, token.UserID, token.Token, token.Platform).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	return token, nil
}

func (s *ReminderService) UnregisterDevice(ctx context.Context, clerkID, token string) error {
	result, err := s.db.Exec(ctx, `
		DELETE FROM device_tokens dt
		USING users u
		WHERE dt.user_id = u.id
			AND u.clerk_id = $1
			AND dt.token = $2
	`, clerkID, token)
	if err != nil {
		return fmt.Errorf("failed to unregister device: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("device token not found")
	}

	return nil
}

type dueReminder struct {
	userID         uuid.UUID
	supplementName string
	dosage         int
}

// SendDueReminders pushes a notification for every reminder slot matching the
// current weekday and minute whose dose has not been logged yet today. The
// worker calls it once per minute.
func (s *ReminderService) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	if s.push == nil {
		return 0, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT dr.user_id, us.name, us.dosage
		FROM dose_reminders dr
		JOIN user_supplements us ON us.id = dr.supplement_id
		WHERE dr.weekday = $1
			AND dr.time_of_day = $2
			AND NOT EXISTS (
				SELECT 1 FROM intake_events ie
				WHERE ie.supplement_id = dr.supplement_id
					AND ie.taken = true
					AND ie.taken_at >= $3
					AND ie.taken_at <= $4
			)
	`, int(now.Weekday()), now.Format("15:04"), adherence.StartOfDay(now), adherence.EndOfDay(now))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due reminders: %w", err)
	}
	defer rows.Close()

	var due []dueReminder
	for rows.Next() {
		var d dueReminder
		if err := rows.Scan(&d.userID, &d.supplementName, &d.dosage); err != nil {
			return 0, fmt.Errorf("failed to scan due reminder: %w", err)
		}
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating due reminders: %w", err)
	}

	sent := 0
	for _, d := range due {
		tokens, err := s.deviceTokens(ctx, d.userID)
		if err != nil {
			log.Printf("SendDueReminders: failed to load tokens for %s: %v", d.userID, err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		body := fmt.Sprintf("Time to take %s", d.supplementName)
		if d.dosage > 0 {
			body = fmt.Sprintf("Time to take %s (%d)", d.supplementName, d.dosage)
		}

		err = s.push.SendPush(ctx, tokens, "Dose reminder", body, map[string]any{
			"type": "dose_reminder",
		})
		if err != nil {
			log.Printf("SendDueReminders: push failed for %s: %v", d.userID, err)
			continue
		}
		sent++
	}

	return sent, nil
}

// SendStreakRiskAlerts notifies users whose streak would break if the rest of
// today's doses stay untaken. Runs in the evening sweep.
func (s *ReminderService) SendStreakRiskAlerts(ctx context.Context, now time.Time) (int, error) {
	if s.push == nil {
		return 0, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT u.id, u.streak_count
		FROM users u
		JOIN user_supplements us ON us.user_id = u.id
		WHERE u.streak_count > 0
			AND (u.last_adherence_date IS NULL OR u.last_adherence_date < $2::date)
			AND $1 = ANY(us.recurrence_days)
			AND NOT EXISTS (
				SELECT 1 FROM intake_events ie
				WHERE ie.supplement_id = us.id
					AND ie.taken = true
					AND ie.taken_at >= $3
					AND ie.taken_at <= $4
			)
	`, int(now.Weekday()), adherence.StartOfDay(now), adherence.StartOfDay(now), adherence.EndOfDay(now))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch streak risks: %w", err)
	}
	defer rows.Close()

	type atRisk struct {
		userID uuid.UUID
		streak int
	}
	var users []atRisk
	for rows.Next() {
		var a atRisk
		if err := rows.Scan(&a.userID, &a.streak); err != nil {
			return 0, fmt.Errorf("failed to scan streak risk: %w", err)
		}
		users = append(users, a)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating streak risks: %w", err)
	}

	sent := 0
	for _, a := range users {
		tokens, err := s.deviceTokens(ctx, a.userID)
		if err != nil || len(tokens) == 0 {
			continue
		}

		body := fmt.Sprintf("Your %d-day streak is at risk. Log today's doses to keep it going!", a.streak)
		err = s.push.SendPush(ctx, tokens, "Streak at risk", body, map[string]any{
			"type": "streak_risk",
		})
		if err != nil {
			log.Printf("SendStreakRiskAlerts: push failed for %s: %v", a.userID, err)
			continue
		}
		sent++
	}

	return sent, nil
}

func (s *ReminderService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]reminder.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, token, platform, created_at
		FROM device_tokens
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []reminder.DeviceToken
	for rows.Next() {
		var t reminder.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}
