package persistence

import "time"

// Profile represents an attendee account keyed by the identity provider's
// opaque user ID. Profiles are created lazily and never deleted.
type Profile struct {
	UserID       string
	DisplayName  string
	MainEmail    string
	TeeShirtSize string
	// AttendingKeys holds encoded conference keys in registration order.
	AttendingKeys []string
	// Wishlist holds encoded session keys in insertion order. Duplicates are
	// permitted.
	Wishlist  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Conference represents a conference owned by its organizer's profile.
type Conference struct {
	Key         ConferenceKey
	Name        string
	Description string
	City        string
	Topics      []string
	// Month is derived from StartDate; zero when no start date is set.
	Month          int
	StartDate      time.Time
	EndDate        time.Time
	MaxAttendees   int
	SeatsAvailable int
	// SessionIDs holds encoded session keys in creation order.
	SessionIDs      []string
	FeaturedSpeaker string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Session represents a conference session. Sessions are immutable once created.
type Session struct {
	Key           SessionKey
	Name          string
	Highlights    []string
	SpeakerUserID string
	// Duration is in minutes; zero means unspecified.
	Duration int
	Type     string
	Date     time.Time
	// StartTime is a time of day rendered as "HH:MM"; empty when unset.
	StartTime string
	CreatedAt time.Time
	UpdatedAt time.Time
}
