package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitaminderAPI/internal/supplement"
	"vitaminderAPI/internal/user"
	"vitaminderAPI/services"
	"vitaminderAPI/tests/helpers"
)

// TestFullAdherenceFlow walks a user through the core loop: sign up, schedule
// a supplement for today, log the dose, earn the daily points, and read the
// weekly report.
func TestFullAdherenceFlow(t *testing.T) {
	// Setup
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	pointsService := services.NewPointsService(pool)
	reminderService := services.NewReminderService(pool)
	supplementService := services.NewSupplementService(pool, pointsService, reminderService)
	reportService := services.NewReportService(pool, pointsService)

	ctx := context.Background()
	now := time.Now()
	clerkID := "user_test_" + now.Format("20060102150405")

	// Step 1: User signs up
	t.Log("Step 1: Create user")

	_, err := userService.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     "testflow@example.com",
		Username:  "testflow",
		FirstName: "Test",
		LastName:  "Flow",
	})
	require.NoError(t, err)

	// Step 2: Schedule a supplement due today
	t.Log("Step 2: Create supplement scheduled for today")

	supp, err := supplementService.CreateSupplement(ctx, clerkID, &supplement.CreateSupplementRequest{
		Name:           "Vitamin D",
		RecurrenceDays: []int{int(now.Weekday())},
		TimeOfDay:      "08:00",
		Dosage:         1,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "", supp.ID.String())

	// Scheduling registers a reminder slot for the weekday
	reminders, err := reminderService.GetReminders(ctx, clerkID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, int(now.Weekday()), reminders[0].Weekday)
	assert.Equal(t, "08:00", reminders[0].TimeOfDay)

	// Step 3: Log the dose
	t.Log("Step 3: Mark taken")

	event, err := supplementService.MarkTaken(ctx, clerkID, supp.ID, now)
	require.NoError(t, err)
	assert.True(t, event.Taken)

	// Step 4: All of today's doses taken, so the daily award fires
	t.Log("Step 4: Verify points and streak")

	ledger, err := userService.GetPointsLedger(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 10, ledger.TotalPoints)
	assert.Equal(t, 1, ledger.StreakCount)
	require.NotNil(t, ledger.LastAdherenceDate)

	// Logging the same dose again must not double-award
	_, err = supplementService.MarkTaken(ctx, clerkID, supp.ID, now)
	require.NoError(t, err)

	ledger, err = userService.GetPointsLedger(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 10, ledger.TotalPoints)
	assert.Equal(t, 1, ledger.StreakCount)

	// Step 5: Today view shows the dose as taken with full adherence
	t.Log("Step 5: Verify today view")

	today, err := supplementService.GetToday(ctx, clerkID, now)
	require.NoError(t, err)
	require.Len(t, today.Supplements, 1)
	assert.True(t, today.Supplements[0].DueToday)
	assert.True(t, today.Supplements[0].TakenToday)
	assert.Equal(t, 100.0, today.OverallAdherence)

	// Step 6: Weekly report reflects the logged dose and the earned points
	t.Log("Step 6: Generate weekly report")

	report, err := reportService.GenerateWeeklyReport(ctx, clerkID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalScheduled)
	assert.Equal(t, 1, report.TotalTaken)
	assert.Equal(t, 100.0, report.AdherenceRate)
	assert.Equal(t, 10, report.PointsGained)
	assert.Empty(t, report.WorstItems)

	// Regenerating keeps the first snapshot and stays consistent
	again, err := reportService.GenerateWeeklyReport(ctx, clerkID, now)
	require.NoError(t, err)
	assert.Equal(t, report.TotalScheduled, again.TotalScheduled)
	assert.Equal(t, report.TotalTaken, again.TotalTaken)

	saved, err := reportService.GetLastReports(ctx, clerkID, 5)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 1, saved[0].TotalTaken)
}
