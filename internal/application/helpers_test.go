package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/example/conference-central/internal/persistence"
	"github.com/example/conference-central/internal/testfixtures"
)

type testEnv struct {
	store         *testfixtures.Store
	clock         *testfixtures.Clock
	profiles      *ProfileService
	conferences   *ConferenceService
	sessions      *SessionService
	announcements *AnnouncementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testfixtures.NewStore()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	profiles := NewProfileService(store, clock.NowFunc(), logger)
	announcements := NewAnnouncementService(store, DefaultAnnouncementSeatThreshold, logger)
	conferences := NewConferenceService(store, profiles, announcements, nil, clock.NowFunc(), logger)
	sessions := NewSessionService(store, store, profiles, clock.NowFunc(), logger)

	return &testEnv{
		store:         store,
		clock:         clock,
		profiles:      profiles,
		conferences:   conferences,
		sessions:      sessions,
		announcements: announcements,
	}
}

func principalFixture(userID string) Principal {
	return Principal{
		UserID:      userID,
		Email:       userID + "@example.com",
		DisplayName: "User " + userID,
	}
}

func (e *testEnv) mustCreateConference(t *testing.T, principal Principal, input ConferenceInput) ConferenceView {
	t.Helper()

	view, err := e.conferences.CreateConference(context.Background(), principal, input)
	if err != nil {
		t.Fatalf("CreateConference failed: %v", err)
	}
	return view
}

func (e *testEnv) mustCreateSession(t *testing.T, principal Principal, input SessionInput) SessionView {
	t.Helper()

	if input.SpeakerUserID == "" {
		input.SpeakerUserID = principal.Email
	}
	view, err := e.sessions.CreateSession(context.Background(), principal, input)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return view
}

func (e *testEnv) conferenceRecord(t *testing.T, websafeKey string) persistence.Conference {
	t.Helper()

	key, err := persistence.DecodeConferenceKey(websafeKey)
	if err != nil {
		t.Fatalf("decode conference key: %v", err)
	}
	conference, err := e.store.GetConference(context.Background(), key)
	if err != nil {
		t.Fatalf("load conference: %v", err)
	}
	return conference
}
