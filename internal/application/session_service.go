package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/conference-central/internal/persistence"
)

// Session defaults applied when a field is absent or empty on creation.
var sessionDefaults = struct {
	Highlights []string
}{
	Highlights: []string{"Free", "Beer"},
}

// WishlistStore extends ProfileDirectory with the wishlist append used by the
// session service.
type WishlistStore interface {
	ProfileDirectory
	AddToWishlist(ctx context.Context, principal Principal, encodedSessionKey string) (persistence.Profile, error)
}

// SessionService orchestrates session creation with featured speaker
// derivation, session listings, and wishlist management.
type SessionService struct {
	sessions    persistence.SessionRepository
	conferences persistence.ConferenceRepository
	profiles    WishlistStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewSessionService wires dependencies for session operations.
func NewSessionService(
	sessions persistence.SessionRepository,
	conferences persistence.ConferenceRepository,
	profiles WishlistStore,
	now func() time.Time,
	logger *slog.Logger,
) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions:    sessions,
		conferences: conferences,
		profiles:    profiles,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateSession validates the input and persists a new session under the
// target conference.
//
// The featured speaker check runs before the transactional create for cost
// reasons: when the caller already speaks at one or more sessions of the
// conference, the new session makes them the conference's featured speaker.
// Two concurrent first-and-second sessions by one speaker may both or neither
// set the flag; that gap is accepted.
func (s *SessionService) CreateSession(ctx context.Context, principal Principal, input SessionInput) (SessionView, error) {
	if s == nil {
		return SessionView{}, fmt.Errorf("SessionService is nil")
	}

	profile, err := s.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		return SessionView{}, err
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Duration < 0 {
		vErr.add("duration", "duration must not be negative")
	}

	sessionType, typeErr := ParseSessionType(input.TypeOfSession)
	if typeErr != nil {
		vErr.add("typeOfSession", "unknown session type")
	}

	var date time.Time
	if input.Date != "" {
		if date, err = parseDate(input.Date); err != nil {
			vErr.add("date", "date must be formatted as YYYY-MM-DD")
		}
	}
	startTime := ""
	if input.StartTime != "" {
		if startTime, err = parseTimeOfDay(input.StartTime); err != nil {
			vErr.add("startTime", "startTime must be formatted as HH:MM")
		}
	}
	if vErr.HasErrors() {
		return SessionView{}, vErr
	}

	conferenceKey, err := persistence.DecodeConferenceKey(input.ConferenceKey)
	if err != nil {
		return SessionView{}, ErrNotFound
	}

	// The caller may only author sessions under their own speaker identity.
	if profile.MainEmail != input.SpeakerUserID {
		return SessionView{}, ErrSpeakerMismatch
	}

	if _, err := s.conferences.GetConference(ctx, conferenceKey); err != nil {
		return SessionView{}, mapStoreError(err)
	}

	featuredSpeaker, err := s.featuredSpeakerFor(ctx, conferenceKey, principal.UserID)
	if err != nil {
		return SessionView{}, mapStoreError(err)
	}

	highlights := cloneStrings(input.Highlights)
	if len(highlights) == 0 {
		highlights = cloneStrings(sessionDefaults.Highlights)
	}

	createdAt := s.now()
	session := persistence.Session{
		Key:           persistence.SessionKey{Conference: conferenceKey},
		Name:          strings.TrimSpace(input.Name),
		Highlights:    highlights,
		SpeakerUserID: principal.UserID,
		Duration:      input.Duration,
		Type:          string(sessionType),
		Date:          date,
		StartTime:     startTime,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}

	persisted, err := s.sessions.CreateSession(ctx, session, featuredSpeaker)
	if err != nil {
		return SessionView{}, mapStoreError(err)
	}

	serviceLogger(ctx, s.logger, "session", "CreateSession",
		"session_key", persisted.Key.Encode()).
		InfoContext(ctx, "created session",
			"name", persisted.Name, "featured_speaker", featuredSpeaker != "")

	return sessionView(persisted), nil
}

// featuredSpeakerFor reports the speaker to feature: the given speaker when
// they already have at least one session in the conference, otherwise empty.
func (s *SessionService) featuredSpeakerFor(ctx context.Context, key persistence.ConferenceKey, speakerUserID string) (string, error) {
	sessions, err := s.sessions.ListConferenceSessions(ctx, key)
	if err != nil {
		return "", err
	}
	for _, session := range sessions {
		if session.SpeakerUserID == speakerUserID {
			return speakerUserID, nil
		}
	}
	return "", nil
}

// ListConferenceSessions returns all sessions of a conference.
func (s *SessionService) ListConferenceSessions(ctx context.Context, websafeConferenceKey string) ([]SessionView, error) {
	return s.listConferenceSessions(ctx, websafeConferenceKey, nil)
}

// ListConferenceSessionsByType returns a conference's sessions of one type.
func (s *SessionService) ListConferenceSessionsByType(ctx context.Context, websafeConferenceKey, typeOfSession string) ([]SessionView, error) {
	sessionType, err := ParseSessionType(typeOfSession)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("typeOfSession", "unknown session type")
		return nil, vErr
	}
	return s.listConferenceSessions(ctx, websafeConferenceKey, &sessionType)
}

func (s *SessionService) listConferenceSessions(ctx context.Context, websafeConferenceKey string, typeFilter *SessionType) ([]SessionView, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}

	key, err := persistence.DecodeConferenceKey(websafeConferenceKey)
	if err != nil {
		return nil, ErrNotFound
	}
	if _, err := s.conferences.GetConference(ctx, key); err != nil {
		return nil, mapStoreError(err)
	}

	sessions, err := s.sessions.ListConferenceSessions(ctx, key)
	if err != nil {
		return nil, mapStoreError(err)
	}

	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		if typeFilter != nil && session.Type != string(*typeFilter) {
			continue
		}
		views = append(views, sessionView(session))
	}
	return views, nil
}

// ListSessionsBySpeaker returns the caller's sessions across all conferences.
func (s *SessionService) ListSessionsBySpeaker(ctx context.Context, principal Principal) ([]SessionView, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}

	if _, err := s.profiles.EnsureProfile(ctx, principal); err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListSessionsBySpeaker(ctx, principal.UserID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView(session))
	}
	return views, nil
}

// AddSessionToWishlist appends a session to the caller's wishlist and returns
// the session. Duplicate wishlist entries are accepted.
func (s *SessionService) AddSessionToWishlist(ctx context.Context, principal Principal, websafeSessionKey string) (SessionView, error) {
	if s == nil {
		return SessionView{}, fmt.Errorf("SessionService is nil")
	}

	key, err := persistence.DecodeSessionKey(websafeSessionKey)
	if err != nil {
		return SessionView{}, ErrNotFound
	}

	session, err := s.sessions.GetSession(ctx, key)
	if err != nil {
		return SessionView{}, mapStoreError(err)
	}

	// The wishlist stores the canonical encoding of the decoded key, not the
	// request string.
	if _, err := s.profiles.AddToWishlist(ctx, principal, key.Encode()); err != nil {
		return SessionView{}, err
	}

	serviceLogger(ctx, s.logger, "session", "AddSessionToWishlist",
		"session_key", websafeSessionKey, "user_id", principal.UserID).
		InfoContext(ctx, "added session to wishlist")

	return sessionView(session), nil
}

// ListWishlistSessions filters the caller's wishlist down to sessions of the
// given conference. Entries that no longer resolve are skipped.
func (s *SessionService) ListWishlistSessions(ctx context.Context, principal Principal, websafeConferenceKey string) ([]SessionView, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}

	profile, err := s.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	conferenceKey, err := persistence.DecodeConferenceKey(websafeConferenceKey)
	if err != nil {
		return nil, ErrNotFound
	}

	keys := make([]persistence.SessionKey, 0, len(profile.Wishlist))
	for _, encoded := range profile.Wishlist {
		key, err := persistence.DecodeSessionKey(encoded)
		if err != nil {
			continue
		}
		if key.Conference != conferenceKey {
			continue
		}
		keys = append(keys, key)
	}

	sessions, err := s.sessions.GetSessions(ctx, keys)
	if err != nil {
		return nil, mapStoreError(err)
	}

	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView(session))
	}
	return views, nil
}
