package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/example/conference-central/internal/persistence"
)

const (
	announcementCacheKey = "RECENT_ANNOUNCEMENTS"
	announcementTemplate = "Last chance to attend! The following conferences are nearly sold out: %s"

	// DefaultAnnouncementSeatThreshold marks a conference as nearly sold out
	// when 0 < seatsAvailable <= threshold.
	DefaultAnnouncementSeatThreshold = 5
)

// AnnouncementLister exposes the store query behind announcement recomputes.
type AnnouncementLister interface {
	ListAlmostSoldOut(ctx context.Context, maxSeats int) ([]persistence.Conference, error)
}

// AnnouncementService maintains the process-wide announcement string derived
// from nearly sold out conferences. The cache has last-writer-wins semantics:
// it is recomputed after seat mutations, cleared when no conference qualifies,
// and read without transactional guarantees. Staleness is acceptable.
type AnnouncementService struct {
	conferences AnnouncementLister
	cache       *gocache.Cache
	threshold   int
	logger      *slog.Logger
}

// NewAnnouncementService wires the announcement cache. A threshold <= 0 falls
// back to the default.
func NewAnnouncementService(conferences AnnouncementLister, threshold int, logger *slog.Logger) *AnnouncementService {
	if threshold <= 0 {
		threshold = DefaultAnnouncementSeatThreshold
	}
	return &AnnouncementService{
		conferences: conferences,
		cache:       gocache.New(gocache.NoExpiration, 10*time.Minute),
		threshold:   threshold,
		logger:      defaultLogger(logger),
	}
}

// Refresh recomputes the announcement from the store and updates the cache,
// returning the new announcement (empty when nothing qualifies).
func (s *AnnouncementService) Refresh(ctx context.Context) (string, error) {
	if s == nil {
		return "", nil
	}

	conferences, err := s.conferences.ListAlmostSoldOut(ctx, s.threshold)
	if err != nil {
		return "", err
	}

	if len(conferences) == 0 {
		s.cache.Delete(announcementCacheKey)
		return "", nil
	}

	names := make([]string, 0, len(conferences))
	for _, conference := range conferences {
		names = append(names, conference.Name)
	}
	announcement := fmt.Sprintf(announcementTemplate, strings.Join(names, ", "))
	s.cache.Set(announcementCacheKey, announcement, gocache.NoExpiration)
	return announcement, nil
}

// Current returns the cached announcement, or an empty string when none is
// set.
func (s *AnnouncementService) Current() string {
	if s == nil {
		return ""
	}
	if value, ok := s.cache.Get(announcementCacheKey); ok {
		if announcement, ok := value.(string); ok {
			return announcement
		}
	}
	return ""
}

// refreshAfterSeatChange recomputes the announcement after a seat count
// mutation. Failures are logged, never surfaced to the mutating caller.
func (s *AnnouncementService) refreshAfterSeatChange(ctx context.Context, logger *slog.Logger) {
	if s == nil {
		return
	}
	if _, err := s.Refresh(ctx); err != nil {
		if logger == nil {
			logger = s.logger
		}
		logger.WarnContext(ctx, "failed to refresh announcement", "error", err)
	}
}
