package application

import (
	"context"
	"testing"
)

func TestAnnouncementService(t *testing.T) {
	t.Parallel()

	t.Run("empty until a conference is nearly sold out", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		organizer := principalFixture("organizer")

		env.mustCreateConference(t, organizer, ConferenceInput{Name: "Roomy Expo", MaxAttendees: 100})
		if got := env.announcements.Current(); got != "" {
			t.Fatalf("expected no announcement, got %q", got)
		}
	})

	t.Run("seat mutations publish the announcement", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		organizer := principalFixture("organizer")

		created := env.mustCreateConference(t, organizer, ConferenceInput{Name: "PyCon", MaxAttendees: 6})
		if got := env.announcements.Current(); got != "" {
			t.Fatalf("expected no announcement at 6 seats, got %q", got)
		}

		if _, err := env.conferences.RegisterForConference(context.Background(), principalFixture("attendee"), created.WebsafeKey); err != nil {
			t.Fatalf("registration failed: %v", err)
		}

		want := "Last chance to attend! The following conferences are nearly sold out: PyCon"
		if got := env.announcements.Current(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("joins multiple qualifying conferences", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		organizer := principalFixture("organizer")

		env.mustCreateConference(t, organizer, ConferenceInput{Name: "GopherCon", MaxAttendees: 3})
		env.mustCreateConference(t, organizer, ConferenceInput{Name: "PyCon", MaxAttendees: 2})

		announcement, err := env.announcements.Refresh(context.Background())
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		want := "Last chance to attend! The following conferences are nearly sold out: GopherCon, PyCon"
		if announcement != want {
			t.Fatalf("expected %q, got %q", want, announcement)
		}
	})

	t.Run("sold out conferences do not qualify and clear the cache", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		organizer := principalFixture("organizer")

		created := env.mustCreateConference(t, organizer, ConferenceInput{Name: "PyCon", MaxAttendees: 1})
		if got := env.announcements.Current(); got == "" {
			t.Fatalf("expected announcement at 1 seat")
		}

		if _, err := env.conferences.RegisterForConference(context.Background(), principalFixture("attendee"), created.WebsafeKey); err != nil {
			t.Fatalf("registration failed: %v", err)
		}
		if got := env.announcements.Current(); got != "" {
			t.Fatalf("expected announcement cleared at 0 seats, got %q", got)
		}
	})

	t.Run("capacity growth clears the announcement", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		organizer := principalFixture("organizer")

		created := env.mustCreateConference(t, organizer, ConferenceInput{Name: "PyCon", MaxAttendees: 2})
		if got := env.announcements.Current(); got == "" {
			t.Fatalf("expected announcement at 2 seats")
		}

		if _, err := env.conferences.UpdateConference(context.Background(), organizer, created.WebsafeKey, ConferenceInput{MaxAttendees: 200}); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if got := env.announcements.Current(); got != "" {
			t.Fatalf("expected announcement cleared after capacity growth, got %q", got)
		}
	})
}
