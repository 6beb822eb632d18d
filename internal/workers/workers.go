package workers

import (
	"context"
	"log"
	"time"
)

// ReminderSender is satisfied by services.ReminderService.
type ReminderSender interface {
	SendDueReminders(ctx context.Context, now time.Time) (int, error)
	SendStreakRiskAlerts(ctx context.Context, now time.Time) (int, error)
}

// streak-risk sweep fires once a day, in the evening
const streakRiskHour = 20

// StartReminderWorker ticks every minute, pushing reminders whose weekday and
// HH:MM slot match the current time. Returns when ctx is cancelled.
func StartReminderWorker(ctx context.Context, sender ReminderSender) {
	ticker := time.NewTicker(1 * time.Minute)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Reminder worker stopped")
				return
			case now := <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 50*time.Second)

				sent, err := sender.SendDueReminders(runCtx, now)
				if err != nil {
					log.Printf("Reminder worker: failed to send due reminders: %v", err)
				} else if sent > 0 {
					log.Printf("Reminder worker: sent %d dose reminders", sent)
				}

				if now.Hour() == streakRiskHour && now.Minute() == 0 {
					sent, err := sender.SendStreakRiskAlerts(runCtx, now)
					if err != nil {
						log.Printf("Reminder worker: failed to send streak alerts: %v", err)
					} else if sent > 0 {
						log.Printf("Reminder worker: sent %d streak risk alerts", sent)
					}
				}

				cancel()
			}
		}
	}()
}
