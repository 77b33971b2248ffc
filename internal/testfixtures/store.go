package testfixtures

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/example/conference-central/internal/persistence"
)

// Store is an in-memory implementation of the persistence repositories. Every
// mutating method holds one lock for its whole unit, giving tests the same
// atomicity and serialization guarantees the SQLite store provides.
type Store struct {
	mu          sync.Mutex
	profiles    map[string]persistence.Profile
	conferences map[persistence.ConferenceKey]persistence.Conference
	sessions    map[persistence.SessionKey]persistence.Session
	nextConfID  map[string]int64
	nextSessID  map[persistence.ConferenceKey]int64
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		profiles:    make(map[string]persistence.Profile),
		conferences: make(map[persistence.ConferenceKey]persistence.Conference),
		sessions:    make(map[persistence.SessionKey]persistence.Session),
		nextConfID:  make(map[string]int64),
		nextSessID:  make(map[persistence.ConferenceKey]int64),
	}
}

// --- ProfileRepository ---

func (s *Store) GetProfile(ctx context.Context, userID string) (persistence.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	return cloneProfile(profile), nil
}

func (s *Store) SaveProfile(ctx context.Context, profile persistence.Profile) (persistence.Profile, error) {
	if profile.UserID == "" {
		return persistence.Profile{}, persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.UserID] = cloneProfile(profile)
	return cloneProfile(profile), nil
}

func (s *Store) GetProfiles(ctx context.Context, userIDs []string) ([]persistence.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := make([]persistence.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if profile, ok := s.profiles[id]; ok {
			profiles = append(profiles, cloneProfile(profile))
		}
	}
	return profiles, nil
}

// --- ConferenceRepository ---

func (s *Store) CreateConference(ctx context.Context, conference persistence.Conference) (persistence.Conference, error) {
	if conference.Key.OrganizerID == "" {
		return persistence.Conference{}, persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextConfID[conference.Key.OrganizerID]++
	conference.Key.LocalID = s.nextConfID[conference.Key.OrganizerID]
	s.conferences[conference.Key] = cloneConference(conference)
	return cloneConference(conference), nil
}

func (s *Store) GetConference(ctx context.Context, key persistence.ConferenceKey) (persistence.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conference, ok := s.conferences[key]
	if !ok {
		return persistence.Conference{}, persistence.ErrNotFound
	}
	return cloneConference(conference), nil
}

func (s *Store) GetConferences(ctx context.Context, keys []persistence.ConferenceKey) ([]persistence.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conferences := make([]persistence.Conference, 0, len(keys))
	for _, key := range keys {
		if conference, ok := s.conferences[key]; ok {
			conferences = append(conferences, cloneConference(conference))
		}
	}
	return conferences, nil
}

func (s *Store) ListConferencesByOrganizer(ctx context.Context, organizerID string) ([]persistence.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conferences []persistence.Conference
	for _, conference := range s.conferences {
		if conference.Key.OrganizerID == organizerID {
			conferences = append(conferences, cloneConference(conference))
		}
	}
	sort.Slice(conferences, func(i, j int) bool {
		return conferences[i].Key.LocalID < conferences[j].Key.LocalID
	})
	return conferences, nil
}

func (s *Store) QueryConferences(ctx context.Context, query persistence.ConferenceQuery) ([]persistence.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []persistence.Conference
	for _, conference := range s.conferences {
		ok, err := matchesAll(conference, query.Conditions)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, cloneConference(conference))
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, field := range query.OrderBy {
			cmp := compareField(matched[i], matched[j], field)
			if cmp != 0 {
				return cmp < 0
			}
		}
		return matched[i].Key.LocalID < matched[j].Key.LocalID
	})

	return matched, nil
}

func (s *Store) ListAlmostSoldOut(ctx context.Context, maxSeats int) ([]persistence.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conferences []persistence.Conference
	for _, conference := range s.conferences {
		if conference.SeatsAvailable > 0 && conference.SeatsAvailable <= maxSeats {
			conferences = append(conferences, cloneConference(conference))
		}
	}
	sort.Slice(conferences, func(i, j int) bool {
		return conferences[i].Name < conferences[j].Name
	})
	return conferences, nil
}

func (s *Store) MutateConference(ctx context.Context, key persistence.ConferenceKey, fn func(*persistence.Conference) error) (persistence.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conference, ok := s.conferences[key]
	if !ok {
		return persistence.Conference{}, persistence.ErrNotFound
	}

	working := cloneConference(conference)
	if err := fn(&working); err != nil {
		return persistence.Conference{}, err
	}
	working.Key = key

	s.conferences[key] = cloneConference(working)
	return working, nil
}

func (s *Store) MutateRegistration(ctx context.Context, userID string, key persistence.ConferenceKey, fn func(*persistence.Profile, *persistence.Conference) error) (persistence.Profile, persistence.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return persistence.Profile{}, persistence.Conference{}, persistence.ErrNotFound
	}
	conference, ok := s.conferences[key]
	if !ok {
		return persistence.Profile{}, persistence.Conference{}, persistence.ErrNotFound
	}

	workingProfile := cloneProfile(profile)
	workingConference := cloneConference(conference)
	if err := fn(&workingProfile, &workingConference); err != nil {
		return persistence.Profile{}, persistence.Conference{}, err
	}
	if workingConference.SeatsAvailable < 0 {
		return persistence.Profile{}, persistence.Conference{}, persistence.ErrConstraintViolation
	}

	s.profiles[userID] = cloneProfile(workingProfile)
	s.conferences[key] = cloneConference(workingConference)
	return workingProfile, workingConference, nil
}

// --- SessionRepository ---

func (s *Store) CreateSession(ctx context.Context, session persistence.Session, featuredSpeaker string) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conferenceKey := session.Key.Conference
	conference, ok := s.conferences[conferenceKey]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}

	s.nextSessID[conferenceKey]++
	session.Key.LocalID = s.nextSessID[conferenceKey]

	conference.SessionIDs = append(conference.SessionIDs, session.Key.Encode())
	if featuredSpeaker != "" {
		conference.FeaturedSpeaker = featuredSpeaker
	}

	s.conferences[conferenceKey] = cloneConference(conference)
	s.sessions[session.Key] = cloneSession(session)
	return cloneSession(session), nil
}

func (s *Store) GetSession(ctx context.Context, key persistence.SessionKey) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *Store) GetSessions(ctx context.Context, keys []persistence.SessionKey) ([]persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]persistence.Session, 0, len(keys))
	for _, key := range keys {
		if session, ok := s.sessions[key]; ok {
			sessions = append(sessions, cloneSession(session))
		}
	}
	return sessions, nil
}

func (s *Store) ListConferenceSessions(ctx context.Context, key persistence.ConferenceKey) ([]persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []persistence.Session
	for _, session := range s.sessions {
		if session.Key.Conference == key {
			sessions = append(sessions, cloneSession(session))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Key.LocalID < sessions[j].Key.LocalID
	})
	return sessions, nil
}

func (s *Store) ListSessionsBySpeaker(ctx context.Context, speakerUserID string) ([]persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []persistence.Session
	for _, session := range s.sessions {
		if session.SpeakerUserID == speakerUserID {
			sessions = append(sessions, cloneSession(session))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Key.Conference != sessions[j].Key.Conference {
			return sessions[i].Key.Conference.Encode() < sessions[j].Key.Conference.Encode()
		}
		return sessions[i].Key.LocalID < sessions[j].Key.LocalID
	})
	return sessions, nil
}

// --- query evaluation ---

func matchesAll(conference persistence.Conference, conditions []persistence.QueryCondition) (bool, error) {
	for _, condition := range conditions {
		ok, err := matches(conference, condition)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matches(conference persistence.Conference, condition persistence.QueryCondition) (bool, error) {
	switch condition.Field {
	case persistence.FieldCity:
		value, ok := condition.Value.(string)
		if !ok {
			return false, fmt.Errorf("city condition requires a string value")
		}
		return compareStrings(conference.City, value, condition.Operator), nil
	case persistence.FieldTopics:
		value, ok := condition.Value.(string)
		if !ok {
			return false, fmt.Errorf("topics condition requires a string value")
		}
		// Repeated attribute: the condition holds when any topic satisfies it.
		for _, topic := range conference.Topics {
			if compareStrings(topic, value, condition.Operator) {
				return true, nil
			}
		}
		return false, nil
	case persistence.FieldMonth:
		value, ok := condition.Value.(int)
		if !ok {
			return false, fmt.Errorf("month condition requires an int value")
		}
		return compareInts(conference.Month, value, condition.Operator), nil
	case persistence.FieldMaxAttendees:
		value, ok := condition.Value.(int)
		if !ok {
			return false, fmt.Errorf("maxAttendees condition requires an int value")
		}
		return compareInts(conference.MaxAttendees, value, condition.Operator), nil
	default:
		return false, fmt.Errorf("unknown query field %q", condition.Field)
	}
}

func compareStrings(actual, expected, operator string) bool {
	cmp := strings.Compare(actual, expected)
	return satisfies(cmp, operator)
}

func compareInts(actual, expected int, operator string) bool {
	cmp := 0
	if actual < expected {
		cmp = -1
	} else if actual > expected {
		cmp = 1
	}
	return satisfies(cmp, operator)
}

func satisfies(cmp int, operator string) bool {
	switch operator {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	default:
		return false
	}
}

func compareField(a, b persistence.Conference, field persistence.FieldName) int {
	switch field {
	case persistence.FieldConferenceName:
		return strings.Compare(a.Name, b.Name)
	case persistence.FieldCity:
		return strings.Compare(a.City, b.City)
	case persistence.FieldTopics:
		return strings.Compare(minTopic(a.Topics), minTopic(b.Topics))
	case persistence.FieldMonth:
		return a.Month - b.Month
	case persistence.FieldMaxAttendees:
		return a.MaxAttendees - b.MaxAttendees
	default:
		return 0
	}
}

func minTopic(topics []string) string {
	min := ""
	for i, topic := range topics {
		if i == 0 || topic < min {
			min = topic
		}
	}
	return min
}

// --- cloning ---

func cloneProfile(profile persistence.Profile) persistence.Profile {
	out := profile
	out.AttendingKeys = cloneStrings(profile.AttendingKeys)
	out.Wishlist = cloneStrings(profile.Wishlist)
	return out
}

func cloneConference(conference persistence.Conference) persistence.Conference {
	out := conference
	out.Topics = cloneStrings(conference.Topics)
	out.SessionIDs = cloneStrings(conference.SessionIDs)
	return out
}

func cloneSession(session persistence.Session) persistence.Session {
	out := session
	out.Highlights = cloneStrings(session.Highlights)
	return out
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
