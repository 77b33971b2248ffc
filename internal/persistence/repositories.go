package persistence

import "context"

// FieldName names a filterable or sortable conference attribute.
type FieldName string

const (
	FieldConferenceName FieldName = "name"
	FieldCity           FieldName = "city"
	FieldTopics         FieldName = "topics"
	FieldMonth          FieldName = "month"
	FieldMaxAttendees   FieldName = "maxAttendees"
)

// QueryCondition is a single compiled predicate of a conference query plan.
// Operator is one of "=", "!=", ">", ">=", "<", "<=". Value holds a string for
// city/topics and an int for month/maxAttendees.
type QueryCondition struct {
	Field    FieldName
	Operator string
	Value    any
}

// ConferenceQuery is a compiled, validated query plan. OrderBy lists sort keys
// in priority order; the store must apply them exactly as given.
type ConferenceQuery struct {
	Conditions []QueryCondition
	OrderBy    []FieldName
}

// ProfileRepository stores attendee profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
	// SaveProfile inserts or updates the profile identified by UserID.
	SaveProfile(ctx context.Context, profile Profile) (Profile, error)
	// GetProfiles resolves the given user IDs in a single round trip. Missing
	// IDs are skipped, not reported as errors.
	GetProfiles(ctx context.Context, userIDs []string) ([]Profile, error)
}

// ConferenceRepository stores conferences and runs the transactional units
// that mutate them. Implementations must guarantee that each method is atomic
// and that conflicting concurrent calls are serialized.
type ConferenceRepository interface {
	// CreateConference allocates a child ID under the organizer's profile and
	// persists the conference. The returned record carries the allocated key.
	CreateConference(ctx context.Context, conference Conference) (Conference, error)
	GetConference(ctx context.Context, key ConferenceKey) (Conference, error)
	// GetConferences resolves the given keys in a single round trip, skipping
	// keys that no longer resolve.
	GetConferences(ctx context.Context, keys []ConferenceKey) ([]Conference, error)
	ListConferencesByOrganizer(ctx context.Context, organizerID string) ([]Conference, error)
	// QueryConferences executes a compiled query plan. Result order follows
	// the plan's OrderBy keys.
	QueryConferences(ctx context.Context, query ConferenceQuery) ([]Conference, error)
	// ListAlmostSoldOut returns conferences with 0 < seatsAvailable <= maxSeats.
	ListAlmostSoldOut(ctx context.Context, maxSeats int) ([]Conference, error)
	// MutateConference runs a read-modify-write unit against one conference.
	// fn receives the current record and edits it in place; returning an error
	// aborts the unit without any visible write.
	MutateConference(ctx context.Context, key ConferenceKey, fn func(*Conference) error) (Conference, error)
	// MutateRegistration runs a read-modify-write unit against a profile and a
	// conference together. Both records are written back atomically when fn
	// succeeds.
	MutateRegistration(ctx context.Context, userID string, key ConferenceKey, fn func(*Profile, *Conference) error) (Profile, Conference, error)
}

// SessionRepository stores sessions.
type SessionRepository interface {
	// CreateSession allocates a child ID under the target conference, persists
	// the session, appends its encoded key to the conference's session list,
	// and, when featuredSpeaker is non-empty, records it on the conference,
	// all within one atomic unit. Returns ErrNotFound without creating
	// anything when the conference no longer exists.
	CreateSession(ctx context.Context, session Session, featuredSpeaker string) (Session, error)
	GetSession(ctx context.Context, key SessionKey) (Session, error)
	// GetSessions resolves the given keys in a single round trip, skipping
	// keys that no longer resolve.
	GetSessions(ctx context.Context, keys []SessionKey) ([]Session, error)
	ListConferenceSessions(ctx context.Context, key ConferenceKey) ([]Session, error)
	ListSessionsBySpeaker(ctx context.Context, speakerUserID string) ([]Session, error)
}
