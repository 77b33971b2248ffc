package application

import (
	"context"
	"errors"
	"testing"
)

func TestConferenceService_CreateConference(t *testing.T) {
	t.Parallel()

	t.Run("requires a name", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.conferences.CreateConference(context.Background(), principalFixture("alice"), ConferenceInput{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("requires an authenticated caller", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.conferences.CreateConference(context.Background(), Principal{}, ConferenceInput{Name: "GopherCon"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.conferences.CreateConference(context.Background(), principalFixture("alice"), ConferenceInput{
			Name:      "GopherCon",
			StartDate: "June 3rd",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("fills declarative defaults", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		view := env.mustCreateConference(t, principalFixture("alice"), ConferenceInput{Name: "GopherCon"})
		if view.City != "Default City" {
			t.Fatalf("expected default city, got %q", view.City)
		}
		if len(view.Topics) != 2 || view.Topics[0] != "Default" || view.Topics[1] != "Topic" {
			t.Fatalf("expected default topics, got %v", view.Topics)
		}
		if view.Month != 0 || view.MaxAttendees != 0 || view.SeatsAvailable != 0 {
			t.Fatalf("expected zero month and seats, got %+v", view)
		}
		if view.FeaturedSpeaker != "" {
			t.Fatalf("expected no featured speaker, got %q", view.FeaturedSpeaker)
		}
	})

	t.Run("derives month and seats", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		view := env.mustCreateConference(t, principalFixture("alice"), ConferenceInput{
			Name:         "GopherCon",
			StartDate:    "2026-09-14",
			EndDate:      "2026-09-16",
			MaxAttendees: 100,
		})
		if view.Month != 9 {
			t.Fatalf("expected month 9, got %d", view.Month)
		}
		if view.SeatsAvailable != 100 {
			t.Fatalf("expected 100 seats, got %d", view.SeatsAvailable)
		}
		if view.StartDate != "2026-09-14" || view.EndDate != "2026-09-16" {
			t.Fatalf("expected dates rendered as strings, got %q %q", view.StartDate, view.EndDate)
		}
	})

	t.Run("accepts dates with a trailing time component", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		view := env.mustCreateConference(t, principalFixture("alice"), ConferenceInput{
			Name:      "GopherCon",
			StartDate: "2026-03-02 10:00:00",
		})
		if view.Month != 3 || view.StartDate != "2026-03-02" {
			t.Fatalf("expected first ten characters parsed, got %+v", view)
		}
	})

	t.Run("reports the organizer display name", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		view := env.mustCreateConference(t, principalFixture("alice"), ConferenceInput{Name: "GopherCon"})
		if view.OrganizerUserID != "alice" || view.OrganizerDisplayName != "User alice" {
			t.Fatalf("expected organizer fields, got %+v", view)
		}
	})
}

func TestConferenceService_UpdateConference(t *testing.T) {
	t.Parallel()

	t.Run("non-owner is forbidden and the conference is unchanged", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		created := env.mustCreateConference(t, principalFixture("alice"), ConferenceInput{Name: "GopherCon", City: "Denver"})

		_, err := env.conferences.UpdateConference(context.Background(), principalFixture("mallory"), created.WebsafeKey, ConferenceInput{City: "Berlin"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}

		record := env.conferenceRecord(t, created.WebsafeKey)
		if record.City != "Denver" {
			t.Fatalf("expected city untouched, got %q", record.City)
		}
	})

	t.Run("applies only the fields present", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		alice := principalFixture("alice")

		created := env.mustCreateConference(t, alice, ConferenceInput{
			Name:      "GopherCon",
			City:      "Denver",
			StartDate: "2026-09-14",
		})

		updated, err := env.conferences.UpdateConference(context.Background(), alice, created.WebsafeKey, ConferenceInput{
			Description: "The Go conference",
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Name != "GopherCon" || updated.City != "Denver" || updated.Month != 9 {
			t.Fatalf("expected untouched fields preserved, got %+v", updated)
		}
		if updated.Description != "The Go conference" {
			t.Fatalf("expected description applied, got %q", updated.Description)
		}
	})

	t.Run("recomputes month when startDate changes", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		alice := principalFixture("alice")

		created := env.mustCreateConference(t, alice, ConferenceInput{Name: "GopherCon", StartDate: "2026-09-14"})

		updated, err := env.conferences.UpdateConference(context.Background(), alice, created.WebsafeKey, ConferenceInput{StartDate: "2026-11-02"})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Month != 11 {
			t.Fatalf("expected month 11, got %d", updated.Month)
		}
	})

	t.Run("unknown key is not found", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.conferences.UpdateConference(context.Background(), principalFixture("alice"), "bogus", ConferenceInput{Name: "X"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConferenceService_GetConference(t *testing.T) {
	t.Parallel()

	t.Run("returns the conference with the organizer name", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		created := env.mustCreateConference(t, principalFixture("alice"), ConferenceInput{Name: "GopherCon"})

		view, err := env.conferences.GetConference(context.Background(), created.WebsafeKey)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if view.Name != "GopherCon" || view.OrganizerDisplayName != "User alice" {
			t.Fatalf("unexpected view %+v", view)
		}
	})

	t.Run("unresolvable key is not found", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		if _, err := env.conferences.GetConference(context.Background(), "bogus"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConferenceService_QueryConferences(t *testing.T) {
	t.Parallel()

	t.Run("filters and orders per the compiled plan", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		alice := principalFixture("alice")
		bob := principalFixture("bob")

		env.mustCreateConference(t, alice, ConferenceInput{Name: "Big Data London", City: "London", MaxAttendees: 5000})
		env.mustCreateConference(t, bob, ConferenceInput{Name: "AI London", City: "London", MaxAttendees: 2000})
		env.mustCreateConference(t, alice, ConferenceInput{Name: "Tiny London Meetup", City: "London", MaxAttendees: 50})
		env.mustCreateConference(t, bob, ConferenceInput{Name: "Paris Expo", City: "Paris", MaxAttendees: 3000})

		views, err := env.conferences.QueryConferences(context.Background(), []Filter{
			{Field: "CITY", Operator: "EQ", Value: "London"},
			{Field: "MAX_ATTENDEES", Operator: "GT", Value: "1000"},
		})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(views) != 2 {
			t.Fatalf("expected 2 conferences, got %d", len(views))
		}
		if views[0].Name != "AI London" || views[1].Name != "Big Data London" {
			t.Fatalf("expected maxAttendees ascending order, got %q then %q", views[0].Name, views[1].Name)
		}
		if views[0].OrganizerDisplayName != "User bob" || views[1].OrganizerDisplayName != "User alice" {
			t.Fatalf("expected organizer names joined, got %+v", views)
		}
	})

	t.Run("propagates filter compilation errors", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.conferences.QueryConferences(context.Background(), []Filter{
			{Field: "MONTH", Operator: "GT", Value: "3"},
			{Field: "CITY", Operator: "NE", Value: "London"},
		})
		if !errors.Is(err, ErrMultipleInequalityFilters) {
			t.Fatalf("expected ErrMultipleInequalityFilters, got %v", err)
		}
	})

	t.Run("sorts by name without inequality filters", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		alice := principalFixture("alice")

		env.mustCreateConference(t, alice, ConferenceInput{Name: "Zig Days", City: "London"})
		env.mustCreateConference(t, alice, ConferenceInput{Name: "Go Days", City: "London"})

		views, err := env.conferences.QueryConferences(context.Background(), []Filter{
			{Field: "CITY", Operator: "EQ", Value: "London"},
		})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(views) != 2 || views[0].Name != "Go Days" || views[1].Name != "Zig Days" {
			t.Fatalf("expected name ascending order, got %+v", views)
		}
	})
}

func TestConferenceService_ListConferencesCreated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := principalFixture("alice")
	bob := principalFixture("bob")

	env.mustCreateConference(t, alice, ConferenceInput{Name: "GopherCon"})
	env.mustCreateConference(t, bob, ConferenceInput{Name: "RustConf"})

	views, err := env.conferences.ListConferencesCreated(context.Background(), alice)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 1 || views[0].Name != "GopherCon" {
		t.Fatalf("expected only alice's conferences, got %+v", views)
	}
}
