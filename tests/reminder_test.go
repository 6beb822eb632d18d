package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitaminderAPI/internal/reminder"
	"vitaminderAPI/internal/supplement"
	"vitaminderAPI/internal/user"
	"vitaminderAPI/services"
	"vitaminderAPI/tests/helpers"
)

// recordingPush stands in for FCM so the test can observe deliveries.
type recordingPush struct {
	mu     sync.Mutex
	sent   int
	bodies []string
}

func (p *recordingPush) SendPush(ctx context.Context, tokens []reminder.DeviceToken, title, body string, data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent++
	p.bodies = append(p.bodies, body)
	return nil
}

func TestDueReminderPush(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	pointsService := services.NewPointsService(pool)
	reminderService := services.NewReminderService(pool)
	supplementService := services.NewSupplementService(pool, pointsService, reminderService)

	push := &recordingPush{}
	reminderService.SetPushProvider(push)

	ctx := context.Background()
	now := time.Now()
	clerkID := "user_test_" + now.Format("20060102150405")

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     "testreminder@example.com",
		Username:  "testreminder",
		FirstName: "Test",
		LastName:  "Reminder",
	})
	require.NoError(t, err)

	_, err = reminderService.RegisterDevice(ctx, clerkID, &reminder.RegisterDeviceRequest{
		Token:    "device-token-" + now.Format("150405"),
		Platform: "android",
	})
	require.NoError(t, err)

	// Schedule a dose in the slot matching the current minute
	supp, err := supplementService.CreateSupplement(ctx, clerkID, &supplement.CreateSupplementRequest{
		Name:           "Magnesium",
		RecurrenceDays: []int{int(now.Weekday())},
		TimeOfDay:      now.Format("15:04"),
		Dosage:         2,
	})
	require.NoError(t, err)

	// The untaken dose matches the current weekday and minute, so one push
	// goes out
	sent, err := reminderService.SendDueReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, push.sent)
	require.Len(t, push.bodies, 1)
	assert.Contains(t, push.bodies[0], "Magnesium")

	// Once the dose is logged, the same slot stays quiet
	_, err = supplementService.MarkTaken(ctx, clerkID, supp.ID, now)
	require.NoError(t, err)

	sent, err = reminderService.SendDueReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, push.sent)
}

func TestUnregisteredDeviceNotPushed(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	pointsService := services.NewPointsService(pool)
	reminderService := services.NewReminderService(pool)
	supplementService := services.NewSupplementService(pool, pointsService, reminderService)

	push := &recordingPush{}
	reminderService.SetPushProvider(push)

	ctx := context.Background()
	now := time.Now()
	clerkID := "user_test_" + now.Format("20060102150405") + "b"

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     "testnodevice@example.com",
		Username:  "testnodevice",
		FirstName: "Test",
		LastName:  "NoDevice",
	})
	require.NoError(t, err)

	token := "device-token-gone-" + now.Format("150405")
	_, err = reminderService.RegisterDevice(ctx, clerkID, &reminder.RegisterDeviceRequest{
		Token:    token,
		Platform: "ios",
	})
	require.NoError(t, err)

	require.NoError(t, reminderService.UnregisterDevice(ctx, clerkID, token))

	_, err = supplementService.CreateSupplement(ctx, clerkID, &supplement.CreateSupplementRequest{
		Name:           "Zinc",
		RecurrenceDays: []int{int(now.Weekday())},
		TimeOfDay:      now.Format("15:04"),
		Dosage:         1,
	})
	require.NoError(t, err)

	// Slot matches but there is no device left to deliver to
	sent, err := reminderService.SendDueReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, push.sent)
}
