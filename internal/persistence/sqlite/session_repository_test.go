package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/conference-central/internal/persistence"
)

func sessionFixture(conference persistence.ConferenceKey, name, speaker string, now time.Time) persistence.Session {
	return persistence.Session{
		Key:           persistence.SessionKey{Conference: conference},
		Name:          name,
		Highlights:    []string{"Free", "Beer"},
		SpeakerUserID: speaker,
		Type:          "NOT_SPECIFIED",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestSessionRepository_CreateSession(t *testing.T) {
	pool := setupTestPool(t)
	conferences := NewConferenceRepository(pool)
	sessions := NewSessionRepository(pool)
	ctx := context.Background()
	now := testTime(t, "2024-06-10T09:30:00Z")

	conference, err := conferences.CreateConference(ctx, conferenceFixture("alice", "GopherCon", now))
	require.NoError(t, err)

	t.Run("allocates sequential IDs and appends to the conference", func(t *testing.T) {
		first, err := sessions.CreateSession(ctx, sessionFixture(conference.Key, "Talk One", "speaker", now), "")
		require.NoError(t, err)
		require.Equal(t, int64(1), first.Key.LocalID)

		second, err := sessions.CreateSession(ctx, sessionFixture(conference.Key, "Talk Two", "speaker", now), "")
		require.NoError(t, err)
		require.Equal(t, int64(2), second.Key.LocalID)

		retrieved, err := conferences.GetConference(ctx, conference.Key)
		require.NoError(t, err)
		require.Equal(t, []string{first.Key.Encode(), second.Key.Encode()}, retrieved.SessionIDs)
	})

	t.Run("records the featured speaker in the same unit", func(t *testing.T) {
		_, err := sessions.CreateSession(ctx, sessionFixture(conference.Key, "Talk Three", "speaker", now), "speaker")
		require.NoError(t, err)

		retrieved, err := conferences.GetConference(ctx, conference.Key)
		require.NoError(t, err)
		require.Equal(t, "speaker", retrieved.FeaturedSpeaker)
	})

	t.Run("vanished conference aborts the unit", func(t *testing.T) {
		gone := persistence.ConferenceKey{OrganizerID: "nobody", LocalID: 9}
		_, err := sessions.CreateSession(ctx, sessionFixture(gone, "Orphan", "speaker", now), "")
		require.ErrorIs(t, err, persistence.ErrNotFound)
	})
}

func TestSessionRepository_GetSessionRoundTrip(t *testing.T) {
	pool := setupTestPool(t)
	conferences := NewConferenceRepository(pool)
	sessions := NewSessionRepository(pool)
	ctx := context.Background()
	now := testTime(t, "2024-06-10T09:30:00Z")

	conference, err := conferences.CreateConference(ctx, conferenceFixture("alice", "GopherCon", now))
	require.NoError(t, err)

	session := sessionFixture(conference.Key, "Generics Workshop", "speaker", now)
	session.Highlights = []string{"Hands on"}
	session.Duration = 90
	session.Type = "WORKSHOP"
	session.Date = testTime(t, "2026-09-15T00:00:00Z")
	session.StartTime = "14:30"

	created, err := sessions.CreateSession(ctx, session, "")
	require.NoError(t, err)

	retrieved, err := sessions.GetSession(ctx, created.Key)
	require.NoError(t, err)
	require.Equal(t, "Generics Workshop", retrieved.Name)
	require.Equal(t, []string{"Hands on"}, retrieved.Highlights)
	require.Equal(t, 90, retrieved.Duration)
	require.Equal(t, "WORKSHOP", retrieved.Type)
	require.Equal(t, "14:30", retrieved.StartTime)
	require.True(t, retrieved.Date.Equal(session.Date))
}

func TestSessionRepository_Listings(t *testing.T) {
	pool := setupTestPool(t)
	conferences := NewConferenceRepository(pool)
	sessions := NewSessionRepository(pool)
	ctx := context.Background()
	now := testTime(t, "2024-06-10T09:30:00Z")

	first, err := conferences.CreateConference(ctx, conferenceFixture("alice", "GopherCon", now))
	require.NoError(t, err)
	second, err := conferences.CreateConference(ctx, conferenceFixture("alice", "RustConf", now))
	require.NoError(t, err)

	talkOne, err := sessions.CreateSession(ctx, sessionFixture(first.Key, "Talk One", "speaker", now), "")
	require.NoError(t, err)
	_, err = sessions.CreateSession(ctx, sessionFixture(first.Key, "Talk Two", "other", now), "")
	require.NoError(t, err)
	elsewhere, err := sessions.CreateSession(ctx, sessionFixture(second.Key, "Elsewhere", "speaker", now), "")
	require.NoError(t, err)

	t.Run("by conference", func(t *testing.T) {
		listed, err := sessions.ListConferenceSessions(ctx, first.Key)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		require.Equal(t, "Talk One", listed[0].Name)
		require.Equal(t, "Talk Two", listed[1].Name)
	})

	t.Run("by speaker across conferences", func(t *testing.T) {
		listed, err := sessions.ListSessionsBySpeaker(ctx, "speaker")
		require.NoError(t, err)
		require.Len(t, listed, 2)
	})

	t.Run("batched lookup skips missing keys", func(t *testing.T) {
		gone := persistence.SessionKey{Conference: first.Key, LocalID: 99}
		listed, err := sessions.GetSessions(ctx, []persistence.SessionKey{gone, talkOne.Key, elsewhere.Key})
		require.NoError(t, err)
		require.Len(t, listed, 2)
		require.Equal(t, talkOne.Key, listed[0].Key)
	})
}
