package application

import (
	"context"
	"fmt"
	"slices"

	"github.com/example/conference-central/internal/persistence"
)

// RegisterForConference registers the caller for a conference, taking one
// seat. It fails with ErrConflict when the caller is already registered or no
// seats remain. Profile and conference are written back in one atomic unit.
func (s *ConferenceService) RegisterForConference(ctx context.Context, principal Principal, websafeKey string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("ConferenceService is nil")
	}

	// Lazy profile creation happens outside the registration unit, mirroring
	// first-access semantics everywhere else.
	if _, err := s.profiles.EnsureProfile(ctx, principal); err != nil {
		return false, err
	}

	key, err := persistence.DecodeConferenceKey(websafeKey)
	if err != nil {
		return false, ErrNotFound
	}

	// Store and compare the canonical encoding of the decoded key, never the
	// request string, so registration state does not depend on how the caller
	// spelled the key.
	canonical := key.Encode()
	_, _, err = s.conferences.MutateRegistration(ctx, principal.UserID, key,
		func(profile *persistence.Profile, conference *persistence.Conference) error {
			if slices.Contains(profile.AttendingKeys, canonical) {
				return fmt.Errorf("%w: already registered for this conference", ErrConflict)
			}
			if conference.SeatsAvailable <= 0 {
				return fmt.Errorf("%w: there are no seats available", ErrConflict)
			}
			profile.AttendingKeys = append(profile.AttendingKeys, canonical)
			profile.UpdatedAt = s.now()
			conference.SeatsAvailable--
			conference.UpdatedAt = s.now()
			return nil
		})
	if err != nil {
		return false, mapStoreError(err)
	}

	logger := serviceLogger(ctx, s.logger, "conference", "RegisterForConference",
		"conference_key", websafeKey, "user_id", principal.UserID)
	logger.InfoContext(ctx, "registered for conference")
	s.announcements.refreshAfterSeatChange(ctx, logger)

	return true, nil
}

// UnregisterFromConference removes the caller's registration and returns the
// seat. When the caller was not registered it succeeds with a false result
// and leaves the seat count unchanged.
func (s *ConferenceService) UnregisterFromConference(ctx context.Context, principal Principal, websafeKey string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("ConferenceService is nil")
	}

	if _, err := s.profiles.EnsureProfile(ctx, principal); err != nil {
		return false, err
	}

	key, err := persistence.DecodeConferenceKey(websafeKey)
	if err != nil {
		return false, ErrNotFound
	}

	canonical := key.Encode()
	removed := false
	_, _, err = s.conferences.MutateRegistration(ctx, principal.UserID, key,
		func(profile *persistence.Profile, conference *persistence.Conference) error {
			index := slices.Index(profile.AttendingKeys, canonical)
			if index < 0 {
				return nil
			}
			removed = true
			profile.AttendingKeys = slices.Delete(profile.AttendingKeys, index, index+1)
			profile.UpdatedAt = s.now()
			conference.SeatsAvailable++
			if conference.SeatsAvailable > conference.MaxAttendees {
				conference.SeatsAvailable = conference.MaxAttendees
			}
			conference.UpdatedAt = s.now()
			return nil
		})
	if err != nil {
		return false, mapStoreError(err)
	}

	logger := serviceLogger(ctx, s.logger, "conference", "UnregisterFromConference",
		"conference_key", websafeKey, "user_id", principal.UserID)
	if removed {
		logger.InfoContext(ctx, "unregistered from conference")
		s.announcements.refreshAfterSeatChange(ctx, logger)
	}

	return removed, nil
}

// ListConferencesToAttend returns the conferences the caller has registered
// for. Keys that no longer resolve are skipped, not fatal.
func (s *ConferenceService) ListConferencesToAttend(ctx context.Context, principal Principal) ([]ConferenceView, error) {
	if s == nil {
		return nil, fmt.Errorf("ConferenceService is nil")
	}

	profile, err := s.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	keys := make([]persistence.ConferenceKey, 0, len(profile.AttendingKeys))
	for _, encoded := range profile.AttendingKeys {
		key, err := persistence.DecodeConferenceKey(encoded)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}

	conferences, err := s.conferences.GetConferences(ctx, keys)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return s.viewsWithOrganizers(ctx, conferences)
}
