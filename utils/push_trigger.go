package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitaminderAPI/internal/reminder"
)

// PushSender is the one method the trigger needs from the push layer, so it
// does not depend on the whole FCM service.
type PushSender interface {
	SendPush(ctx context.Context, tokens []reminder.DeviceToken, title, body string, data map[string]any) error
}

// StreakMilestoneReached fans out a congratulation push to the user's devices.
// Runs fire-and-forget after the points transaction has committed.
func StreakMilestoneReached(db *pgxpool.Pool, sender PushSender, userID uuid.UUID, streak int) {
	if sender == nil {
		return
	}

	bgCtx := context.Background()

	rows, err := db.Query(bgCtx, `
		SELECT id, user_id, token, platform, created_at
		FROM device_tokens
		WHERE user_id = $1
	`, userID)
	if err != nil {
		log.Printf("Failed to get device tokens for milestone push: %v", err)
		return
	}
	defer rows.Close()

	var tokens []reminder.DeviceToken
	for rows.Next() {
		var t reminder.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			continue
		}
		tokens = append(tokens, t)
	}

	if len(tokens) == 0 {
		return
	}

	body := fmt.Sprintf("You hit a %d-day streak and earned bonus points!", streak)
	err = sender.SendPush(bgCtx, tokens, "Streak milestone", body, map[string]any{
		"type":   "streak_milestone",
		"streak": streak,
	})
	if err != nil {
		log.Printf("Failed to send milestone push to %s: %v", userID, err)
	}
}
