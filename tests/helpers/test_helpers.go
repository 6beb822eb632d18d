package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB creates a test database connection. Tests that need a database
// are skipped when neither TEST_DATABASE_URL nor DATABASE_URL is set.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// CleanupTestDB cleans up test data
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM users WHERE email LIKE 'test%@example.com'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test users: %v", err)
	}
	_, err = pool.Exec(ctx, "DELETE FROM catalog_supplements WHERE name LIKE 'Test %'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test catalog entries: %v", err)
	}
	pool.Close()
}

// GenerateMockClerkJWT generates a mock JWT token for testing
func GenerateMockClerkJWT(clerkID string) (string, error) {
	// Use a test secret key
	secretKey := []byte("test-secret-key-for-testing-only")

	claims := jwt.MapClaims{
		"sub": clerkID,                               // Clerk user ID
		"iss": "https://clerk.test",                  // Issuer
		"iat": time.Now().Unix(),                     // Issued at
		"exp": time.Now().Add(time.Hour * 24).Unix(), // Expires in 24 hours
		"azp": "test-app-id",                         // Authorized party
		"sid": "sess_test123",                        // Session ID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// MockClerkWebhookPayload creates a mock webhook payload
func MockClerkWebhookPayload(eventType string, clerkID string) []byte {
	payload := ""

	switch eventType {
	case "user.created":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "Test",
				"last_name": "User",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "test.user@example.com",
					"verification": {"status": "verified"}
				}],
				"primary_email_address_id": "email_123",
				"username": "testuser",
				"image_url": "https://example.com/image.jpg",
				"profile_image_url": "https://example.com/image.jpg"
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)

	case "user.updated":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "Updated",
				"last_name": "User",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "test.user@example.com",
					"verification": {"status": "verified"}
				}],
				"username": "updateduser",
				"image_url": "https://example.com/new-image.jpg"
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)

	case "user.deleted":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"deleted": true
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)
	}

	return []byte(payload)
}
