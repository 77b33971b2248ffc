package persistence

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// ConferenceKey identifies a conference as a child of its organizer's profile.
// The local ID is allocated by the store when the conference is created.
type ConferenceKey struct {
	OrganizerID string
	LocalID     int64
}

// SessionKey identifies a session as a child of its conference.
type SessionKey struct {
	Conference ConferenceKey
	LocalID    int64
}

// IsZero reports whether the key has not been populated.
func (k ConferenceKey) IsZero() bool {
	return k.OrganizerID == "" && k.LocalID == 0
}

// Encode renders the key as an opaque URL-safe string for external callers.
func (k ConferenceKey) Encode() string {
	raw := fmt.Sprintf("profile/%s/conference/%d", k.OrganizerID, k.LocalID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// IsZero reports whether the key has not been populated.
func (k SessionKey) IsZero() bool {
	return k.Conference.IsZero() && k.LocalID == 0
}

// Encode renders the key as an opaque URL-safe string for external callers.
func (k SessionKey) Encode() string {
	raw := fmt.Sprintf("profile/%s/conference/%d/session/%d",
		k.Conference.OrganizerID, k.Conference.LocalID, k.LocalID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeConferenceKey parses an opaque external key produced by Encode.
func DecodeConferenceKey(encoded string) (ConferenceKey, error) {
	parts, err := decodeKeyPath(encoded, 4)
	if err != nil {
		return ConferenceKey{}, err
	}
	if parts[0] != "profile" || parts[2] != "conference" {
		return ConferenceKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, encoded)
	}
	localID, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || parts[1] == "" || localID <= 0 {
		return ConferenceKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, encoded)
	}
	return ConferenceKey{OrganizerID: parts[1], LocalID: localID}, nil
}

// DecodeSessionKey parses an opaque external key produced by Encode.
func DecodeSessionKey(encoded string) (SessionKey, error) {
	parts, err := decodeKeyPath(encoded, 6)
	if err != nil {
		return SessionKey{}, err
	}
	if parts[0] != "profile" || parts[2] != "conference" || parts[4] != "session" {
		return SessionKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, encoded)
	}
	confID, confErr := strconv.ParseInt(parts[3], 10, 64)
	localID, localErr := strconv.ParseInt(parts[5], 10, 64)
	if confErr != nil || localErr != nil || parts[1] == "" || confID <= 0 || localID <= 0 {
		return SessionKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, encoded)
	}
	return SessionKey{
		Conference: ConferenceKey{OrganizerID: parts[1], LocalID: confID},
		LocalID:    localID,
	}, nil
}

func decodeKeyPath(encoded string, segments int) ([]string, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	// Strict decoding rejects encodings with nonzero trailing bits, so every
	// key has exactly one accepted external form. Without this a crafted
	// variant of a valid key would decode to the same path yet compare
	// unequal as a string.
	raw, err := base64.RawURLEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, encoded)
	}
	parts := strings.Split(string(raw), "/")
	if len(parts) != segments {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, encoded)
	}
	return parts, nil
}
