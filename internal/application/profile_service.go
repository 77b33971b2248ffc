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

// ProfileService manages attendee profiles. Profiles are created lazily on
// first access for an authenticated caller and are never deleted.
type ProfileService struct {
	profiles persistence.ProfileRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewProfileService wires dependencies for profile operations.
func NewProfileService(profiles persistence.ProfileRepository, now func() time.Time, logger *slog.Logger) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{profiles: profiles, now: now, logger: defaultLogger(logger)}
}

// EnsureProfile loads the caller's profile, creating it with defaults when it
// does not exist yet.
func (s *ProfileService) EnsureProfile(ctx context.Context, principal Principal) (persistence.Profile, error) {
	if s == nil {
		return persistence.Profile{}, fmt.Errorf("ProfileService is nil")
	}
	if !principal.Authenticated() {
		return persistence.Profile{}, ErrUnauthorized
	}

	profile, err := s.profiles.GetProfile(ctx, principal.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return persistence.Profile{}, err
	}

	createdAt := s.now()
	profile = persistence.Profile{
		UserID:       principal.UserID,
		DisplayName:  displayNameFor(principal),
		MainEmail:    principal.Email,
		TeeShirtSize: string(TeeShirtNotSpecified),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	persisted, err := s.profiles.SaveProfile(ctx, profile)
	if err != nil {
		return persistence.Profile{}, err
	}

	serviceLogger(ctx, s.logger, "profile", "EnsureProfile", "user_id", principal.UserID).
		InfoContext(ctx, "created profile")
	return persisted, nil
}

// GetProfile returns the caller's profile view, creating the profile first if
// needed.
func (s *ProfileService) GetProfile(ctx context.Context, principal Principal) (ProfileView, error) {
	profile, err := s.EnsureProfile(ctx, principal)
	if err != nil {
		return ProfileView{}, err
	}
	return profileView(profile), nil
}

// SaveProfile applies the user modifiable fields and returns the updated view.
// Empty input fields leave the stored values untouched.
func (s *ProfileService) SaveProfile(ctx context.Context, principal Principal, input ProfileInput) (ProfileView, error) {
	profile, err := s.EnsureProfile(ctx, principal)
	if err != nil {
		return ProfileView{}, err
	}

	vErr := &ValidationError{}
	size := TeeShirtSize("")
	if strings.TrimSpace(input.TeeShirtSize) != "" {
		size, err = ParseTeeShirtSize(input.TeeShirtSize)
		if err != nil {
			vErr.add("teeShirtSize", "unknown tee shirt size")
		}
	}
	if vErr.HasErrors() {
		return ProfileView{}, vErr
	}

	changed := false
	if name := strings.TrimSpace(input.DisplayName); name != "" && name != profile.DisplayName {
		profile.DisplayName = name
		changed = true
	}
	if size != "" && string(size) != profile.TeeShirtSize {
		profile.TeeShirtSize = string(size)
		changed = true
	}

	if !changed {
		return profileView(profile), nil
	}

	profile.UpdatedAt = s.now()
	persisted, err := s.profiles.SaveProfile(ctx, profile)
	if err != nil {
		return ProfileView{}, err
	}
	return profileView(persisted), nil
}

// AddToWishlist appends an encoded session key to the caller's wishlist.
// Duplicates are accepted.
func (s *ProfileService) AddToWishlist(ctx context.Context, principal Principal, encodedSessionKey string) (persistence.Profile, error) {
	profile, err := s.EnsureProfile(ctx, principal)
	if err != nil {
		return persistence.Profile{}, err
	}

	profile.Wishlist = append(profile.Wishlist, encodedSessionKey)
	profile.UpdatedAt = s.now()
	return s.profiles.SaveProfile(ctx, profile)
}

// GetProfiles resolves profiles for the given user IDs in one round trip.
func (s *ProfileService) GetProfiles(ctx context.Context, userIDs []string) ([]persistence.Profile, error) {
	if s == nil || len(userIDs) == 0 {
		return nil, nil
	}
	return s.profiles.GetProfiles(ctx, userIDs)
}

// displayNameFor derives the initial display name for a new profile: the
// provider supplied name when present, otherwise the email local part.
func displayNameFor(principal Principal) string {
	if name := strings.TrimSpace(principal.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(principal.Email, "@"); at > 0 {
		return principal.Email[:at]
	}
	return principal.UserID
}
