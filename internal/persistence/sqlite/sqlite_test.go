package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/conference-central/internal/persistence"
)

func setupTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, pool.Migrate(context.Background()))
	return pool
}

func testTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func profileFixture(userID string, now time.Time) persistence.Profile {
	return persistence.Profile{
		UserID:       userID,
		DisplayName:  "User " + userID,
		MainEmail:    userID + "@example.com",
		TeeShirtSize: "NOT_SPECIFIED",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func conferenceFixture(organizerID, name string, now time.Time) persistence.Conference {
	return persistence.Conference{
		Key:            persistence.ConferenceKey{OrganizerID: organizerID},
		Name:           name,
		City:           "Default City",
		Topics:         []string{"Default", "Topic"},
		MaxAttendees:   10,
		SeatsAvailable: 10,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := setupTestPool(t)
	require.NoError(t, pool.Migrate(context.Background()))
}
