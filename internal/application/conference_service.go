package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/conference-central/internal/persistence"
)

// Conference defaults applied when a field is absent or empty on creation.
var conferenceDefaults = struct {
	City   string
	Topics []string
}{
	City:   "Default City",
	Topics: []string{"Default", "Topic"},
}

// ProfileDirectory exposes the profile operations other services depend on.
type ProfileDirectory interface {
	EnsureProfile(ctx context.Context, principal Principal) (persistence.Profile, error)
	GetProfiles(ctx context.Context, userIDs []string) ([]persistence.Profile, error)
}

// ConferenceService orchestrates validation, transactions, and views for
// conference operations.
type ConferenceService struct {
	conferences   persistence.ConferenceRepository
	profiles      ProfileDirectory
	announcements *AnnouncementService
	notifier      Notifier
	now           func() time.Time
	logger        *slog.Logger
}

// NewConferenceService wires dependencies for conference operations.
func NewConferenceService(
	conferences persistence.ConferenceRepository,
	profiles ProfileDirectory,
	announcements *AnnouncementService,
	notifier Notifier,
	now func() time.Time,
	logger *slog.Logger,
) *ConferenceService {
	if now == nil {
		now = time.Now
	}
	return &ConferenceService{
		conferences:   conferences,
		profiles:      profiles,
		announcements: announcements,
		notifier:      notifier,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// CreateConference validates the input, fills declarative defaults, and
// persists a new conference under the caller's profile.
func (s *ConferenceService) CreateConference(ctx context.Context, principal Principal, input ConferenceInput) (ConferenceView, error) {
	if s == nil {
		return ConferenceView{}, fmt.Errorf("ConferenceService is nil")
	}

	profile, err := s.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		return ConferenceView{}, err
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.MaxAttendees < 0 {
		vErr.add("maxAttendees", "maxAttendees must not be negative")
	}

	var startDate, endDate time.Time
	if input.StartDate != "" {
		if startDate, err = parseDate(input.StartDate); err != nil {
			vErr.add("startDate", "startDate must be formatted as YYYY-MM-DD")
		}
	}
	if input.EndDate != "" {
		if endDate, err = parseDate(input.EndDate); err != nil {
			vErr.add("endDate", "endDate must be formatted as YYYY-MM-DD")
		}
	}
	if vErr.HasErrors() {
		return ConferenceView{}, vErr
	}

	city := strings.TrimSpace(input.City)
	if city == "" {
		city = conferenceDefaults.City
	}
	topics := cloneStrings(input.Topics)
	if len(topics) == 0 {
		topics = cloneStrings(conferenceDefaults.Topics)
	}

	month := 0
	if !startDate.IsZero() {
		month = int(startDate.Month())
	}

	seats := 0
	if input.MaxAttendees > 0 {
		seats = input.MaxAttendees
	}

	createdAt := s.now()
	conference := persistence.Conference{
		Key:            persistence.ConferenceKey{OrganizerID: principal.UserID},
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		City:           city,
		Topics:         topics,
		Month:          month,
		StartDate:      startDate,
		EndDate:        endDate,
		MaxAttendees:   input.MaxAttendees,
		SeatsAvailable: seats,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}

	persisted, err := s.conferences.CreateConference(ctx, conference)
	if err != nil {
		return ConferenceView{}, mapStoreError(err)
	}

	logger := serviceLogger(ctx, s.logger, "conference", "CreateConference",
		"conference_key", persisted.Key.Encode())
	logger.InfoContext(ctx, "created conference", "name", persisted.Name)

	// Confirmation email is fire and forget; it is never awaited.
	if s.notifier != nil {
		go s.notifier.ConferenceCreated(context.WithoutCancel(ctx), profile.MainEmail, persisted.Name)
	}
	if persisted.SeatsAvailable > 0 {
		s.announcements.refreshAfterSeatChange(ctx, logger)
	}

	return conferenceView(persisted, profile.DisplayName), nil
}

// UpdateConference applies the fields present in the input to an existing
// conference. Only the owning organizer may update; absent or empty fields
// leave stored values untouched.
func (s *ConferenceService) UpdateConference(ctx context.Context, principal Principal, websafeKey string, input ConferenceInput) (ConferenceView, error) {
	if s == nil {
		return ConferenceView{}, fmt.Errorf("ConferenceService is nil")
	}
	if !principal.Authenticated() {
		return ConferenceView{}, ErrUnauthorized
	}

	key, err := persistence.DecodeConferenceKey(websafeKey)
	if err != nil {
		return ConferenceView{}, ErrNotFound
	}

	vErr := &ValidationError{}
	var startDate, endDate time.Time
	if input.StartDate != "" {
		if startDate, err = parseDate(input.StartDate); err != nil {
			vErr.add("startDate", "startDate must be formatted as YYYY-MM-DD")
		}
	}
	if input.EndDate != "" {
		if endDate, err = parseDate(input.EndDate); err != nil {
			vErr.add("endDate", "endDate must be formatted as YYYY-MM-DD")
		}
	}
	if input.MaxAttendees < 0 {
		vErr.add("maxAttendees", "maxAttendees must not be negative")
	}
	if vErr.HasErrors() {
		return ConferenceView{}, vErr
	}

	seatsChanged := false
	updated, err := s.conferences.MutateConference(ctx, key, func(conference *persistence.Conference) error {
		if conference.Key.OrganizerID != principal.UserID {
			return ErrForbidden
		}

		if name := strings.TrimSpace(input.Name); name != "" {
			conference.Name = name
		}
		if input.Description != "" {
			conference.Description = input.Description
		}
		if city := strings.TrimSpace(input.City); city != "" {
			conference.City = city
		}
		if len(input.Topics) > 0 {
			conference.Topics = cloneStrings(input.Topics)
		}
		if !startDate.IsZero() {
			conference.StartDate = startDate
			conference.Month = int(startDate.Month())
		}
		if !endDate.IsZero() {
			conference.EndDate = endDate
		}
		if input.MaxAttendees > 0 && input.MaxAttendees != conference.MaxAttendees {
			// Capacity changes shift the open seat count by the same delta,
			// clamped so that seatsAvailable stays within [0, maxAttendees].
			seats := conference.SeatsAvailable + input.MaxAttendees - conference.MaxAttendees
			if seats < 0 {
				seats = 0
			}
			if seats > input.MaxAttendees {
				seats = input.MaxAttendees
			}
			conference.MaxAttendees = input.MaxAttendees
			conference.SeatsAvailable = seats
			seatsChanged = true
		}
		conference.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return ConferenceView{}, mapStoreError(err)
	}

	logger := serviceLogger(ctx, s.logger, "conference", "UpdateConference",
		"conference_key", websafeKey)
	logger.InfoContext(ctx, "updated conference")
	if seatsChanged {
		s.announcements.refreshAfterSeatChange(ctx, logger)
	}

	return conferenceView(updated, s.organizerDisplayName(ctx, updated.Key.OrganizerID)), nil
}

// GetConference returns the conference identified by its external key.
func (s *ConferenceService) GetConference(ctx context.Context, websafeKey string) (ConferenceView, error) {
	if s == nil {
		return ConferenceView{}, fmt.Errorf("ConferenceService is nil")
	}

	key, err := persistence.DecodeConferenceKey(websafeKey)
	if err != nil {
		return ConferenceView{}, ErrNotFound
	}

	conference, err := s.conferences.GetConference(ctx, key)
	if err != nil {
		return ConferenceView{}, mapStoreError(err)
	}

	return conferenceView(conference, s.organizerDisplayName(ctx, conference.Key.OrganizerID)), nil
}

// QueryConferences compiles the caller's filters and executes the resulting
// plan, joining organizer display names in a single batched lookup.
func (s *ConferenceService) QueryConferences(ctx context.Context, filters []Filter) ([]ConferenceView, error) {
	if s == nil {
		return nil, fmt.Errorf("ConferenceService is nil")
	}

	plan, err := CompileConferenceQuery(filters)
	if err != nil {
		return nil, err
	}

	conferences, err := s.conferences.QueryConferences(ctx, plan)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return s.viewsWithOrganizers(ctx, conferences)
}

// ListConferencesCreated returns the conferences organized by the caller.
func (s *ConferenceService) ListConferencesCreated(ctx context.Context, principal Principal) ([]ConferenceView, error) {
	if s == nil {
		return nil, fmt.Errorf("ConferenceService is nil")
	}

	profile, err := s.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	conferences, err := s.conferences.ListConferencesByOrganizer(ctx, principal.UserID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	views := make([]ConferenceView, 0, len(conferences))
	for _, conference := range conferences {
		views = append(views, conferenceView(conference, profile.DisplayName))
	}
	return views, nil
}

// viewsWithOrganizers joins conferences with their organizers' display names
// using one batched profile lookup for all distinct organizer IDs.
func (s *ConferenceService) viewsWithOrganizers(ctx context.Context, conferences []persistence.Conference) ([]ConferenceView, error) {
	organizerIDs := make([]string, 0, len(conferences))
	seen := make(map[string]struct{}, len(conferences))
	for _, conference := range conferences {
		id := conference.Key.OrganizerID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		organizerIDs = append(organizerIDs, id)
	}

	profiles, err := s.profiles.GetProfiles(ctx, organizerIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(profiles))
	for _, profile := range profiles {
		names[profile.UserID] = profile.DisplayName
	}

	views := make([]ConferenceView, 0, len(conferences))
	for _, conference := range conferences {
		views = append(views, conferenceView(conference, names[conference.Key.OrganizerID]))
	}
	return views, nil
}

func (s *ConferenceService) organizerDisplayName(ctx context.Context, organizerID string) string {
	profiles, err := s.profiles.GetProfiles(ctx, []string{organizerID})
	if err != nil || len(profiles) == 0 {
		return ""
	}
	return profiles[0].DisplayName
}

// mapStoreError translates persistence sentinels to application sentinels.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, persistence.ErrNotFound), errors.Is(err, persistence.ErrInvalidKey):
		return ErrNotFound
	case errors.Is(err, persistence.ErrWriteConflict), errors.Is(err, persistence.ErrDuplicate):
		return ErrConflict
	case errors.Is(err, persistence.ErrConstraintViolation):
		return ErrConflict
	default:
		return err
	}
}
