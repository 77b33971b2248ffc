package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/conference-central/internal/persistence"
)

// Principal represents the authenticated user invoking a service method. The
// identity provider supplies the opaque user ID and the verified email.
type Principal struct {
	UserID      string
	Email       string
	DisplayName string
}

// Authenticated reports whether the principal carries a caller identity.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// SessionType is the closed set of session categories.
type SessionType string

const (
	SessionTypeNotSpecified SessionType = "NOT_SPECIFIED"
	SessionTypeLecture      SessionType = "LECTURE"
	SessionTypeKeynote      SessionType = "KEYNOTE"
	SessionTypeWorkshop     SessionType = "WORKSHOP"
)

// ParseSessionType resolves a caller supplied token to a SessionType.
func ParseSessionType(value string) (SessionType, error) {
	switch SessionType(strings.ToUpper(strings.TrimSpace(value))) {
	case SessionTypeNotSpecified, "":
		return SessionTypeNotSpecified, nil
	case SessionTypeLecture:
		return SessionTypeLecture, nil
	case SessionTypeKeynote:
		return SessionTypeKeynote, nil
	case SessionTypeWorkshop:
		return SessionTypeWorkshop, nil
	}
	return "", fmt.Errorf("unknown session type %q", value)
}

// TeeShirtSize is the closed set of shirt sizes stored on a profile.
type TeeShirtSize string

const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXS           TeeShirtSize = "XS"
	TeeShirtS            TeeShirtSize = "S"
	TeeShirtM            TeeShirtSize = "M"
	TeeShirtL            TeeShirtSize = "L"
	TeeShirtXL           TeeShirtSize = "XL"
	TeeShirtXXL          TeeShirtSize = "XXL"
	TeeShirtXXXL         TeeShirtSize = "XXXL"
)

// ParseTeeShirtSize resolves a caller supplied token to a TeeShirtSize.
func ParseTeeShirtSize(value string) (TeeShirtSize, error) {
	switch TeeShirtSize(strings.ToUpper(strings.TrimSpace(value))) {
	case TeeShirtNotSpecified, "":
		return TeeShirtNotSpecified, nil
	case TeeShirtXS:
		return TeeShirtXS, nil
	case TeeShirtS:
		return TeeShirtS, nil
	case TeeShirtM:
		return TeeShirtM, nil
	case TeeShirtL:
		return TeeShirtL, nil
	case TeeShirtXL:
		return TeeShirtXL, nil
	case TeeShirtXXL:
		return TeeShirtXXL, nil
	case TeeShirtXXXL:
		return TeeShirtXXXL, nil
	}
	return "", fmt.Errorf("unknown tee shirt size %q", value)
}

// ConferenceInput captures caller provided conference fields. Dates arrive as
// strings and are parsed during validation.
type ConferenceInput struct {
	Name         string
	Description  string
	City         string
	Topics       []string
	StartDate    string
	EndDate      string
	MaxAttendees int
}

// SessionInput captures caller provided session fields.
type SessionInput struct {
	ConferenceKey string
	Name          string
	Highlights    []string
	SpeakerUserID string
	Duration      int
	TypeOfSession string
	Date          string
	StartTime     string
}

// ProfileInput captures the user modifiable profile fields.
type ProfileInput struct {
	DisplayName  string
	TeeShirtSize string
}

// ConferenceView is the outbound representation of a conference. Date fields
// are rendered as strings; WebsafeKey is the encoded store key.
type ConferenceView struct {
	WebsafeKey           string   `json:"websafeKey"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	City                 string   `json:"city"`
	Topics               []string `json:"topics"`
	Month                int      `json:"month"`
	StartDate            string   `json:"startDate"`
	EndDate              string   `json:"endDate"`
	MaxAttendees         int      `json:"maxAttendees"`
	SeatsAvailable       int      `json:"seatsAvailable"`
	SessionIDs           []string `json:"sessionIds"`
	FeaturedSpeaker      string   `json:"featuredSpeaker"`
	OrganizerUserID      string   `json:"organizerUserId"`
	OrganizerDisplayName string   `json:"organizerDisplayName"`
}

// SessionView is the outbound representation of a session.
type SessionView struct {
	WebsafeKey    string   `json:"websafeKey"`
	ConferenceKey string   `json:"conferenceId"`
	Name          string   `json:"name"`
	Highlights    []string `json:"highlights"`
	SpeakerUserID string   `json:"speakerUserId"`
	Duration      int      `json:"duration"`
	TypeOfSession string   `json:"typeOfSession"`
	Date          string   `json:"date"`
	StartTime     string   `json:"startTime"`
}

// ProfileView is the outbound representation of a profile.
type ProfileView struct {
	UserID                 string   `json:"userId"`
	DisplayName            string   `json:"displayName"`
	MainEmail              string   `json:"mainEmail"`
	TeeShirtSize           string   `json:"teeShirtSize"`
	ConferenceKeysToAttend []string `json:"conferenceKeysToAttend"`
	SessionWishlist        []string `json:"sessionWishlist"`
}

const dateLayout = "2006-01-02"

// parseDate interprets the first ten characters of a caller supplied date
// string as a calendar date. The remainder is ignored.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > 10 {
		value = value[:10]
	}
	return time.Parse(dateLayout, value)
}

// parseTimeOfDay interprets the first five characters of a caller supplied
// time string as an "HH:MM" time of day and returns its canonical rendering.
func parseTimeOfDay(value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) > 5 {
		value = value[:5]
	}
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return "", err
	}
	return parsed.Format("15:04"), nil
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(dateLayout)
}

// Explicit field mapping between store records and outbound views. Each
// date/time field is rendered as a string here rather than inferred from the
// field name.

func conferenceView(conference persistence.Conference, organizerDisplayName string) ConferenceView {
	return ConferenceView{
		WebsafeKey:           conference.Key.Encode(),
		Name:                 conference.Name,
		Description:          conference.Description,
		City:                 conference.City,
		Topics:               cloneStrings(conference.Topics),
		Month:                conference.Month,
		StartDate:            formatDate(conference.StartDate),
		EndDate:              formatDate(conference.EndDate),
		MaxAttendees:         conference.MaxAttendees,
		SeatsAvailable:       conference.SeatsAvailable,
		SessionIDs:           cloneStrings(conference.SessionIDs),
		FeaturedSpeaker:      conference.FeaturedSpeaker,
		OrganizerUserID:      conference.Key.OrganizerID,
		OrganizerDisplayName: organizerDisplayName,
	}
}

func sessionView(session persistence.Session) SessionView {
	return SessionView{
		WebsafeKey:    session.Key.Encode(),
		ConferenceKey: session.Key.Conference.Encode(),
		Name:          session.Name,
		Highlights:    cloneStrings(session.Highlights),
		SpeakerUserID: session.SpeakerUserID,
		Duration:      session.Duration,
		TypeOfSession: session.Type,
		Date:          formatDate(session.Date),
		StartTime:     session.StartTime,
	}
}

func profileView(profile persistence.Profile) ProfileView {
	return ProfileView{
		UserID:                 profile.UserID,
		DisplayName:            profile.DisplayName,
		MainEmail:              profile.MainEmail,
		TeeShirtSize:           profile.TeeShirtSize,
		ConferenceKeysToAttend: cloneStrings(profile.AttendingKeys),
		SessionWishlist:        cloneStrings(profile.Wishlist),
	}
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
