package service

import (
	"context"
	"sort"
	"time"

	"courtline/internal/domain"
	"courtline/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Availability manages the weekly recurring window sets of coach profiles.
type Availability struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewAvailability(store domain.Store, logger *zerolog.Logger) *Availability {
	return &Availability{store: store, logger: logger}
}

// IsWithinAvailability reports whether [start,end] is fully contained in a
// single window of the profile for the given weekday. A slot that spans two
// adjacent windows is not contained.
func (s *Availability) IsWithinAvailability(ctx context.Context, orgID, profileID string, weekday time.Weekday, start, end models.Clock) (bool, error) {
	if start >= end {
		return false, ErrInvalidTimeRange
	}

	windows, err := s.store.ListAvailabilityForWeekday(ctx, orgID, profileID, weekday)
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		if w.Contains(start, end) {
			return true, nil
		}
	}
	return false, nil
}

// SetAvailability replaces the profile's full window set. Members may only
// edit their own windows; admins may edit anyone's.
func (s *Availability) SetAvailability(ctx context.Context, caller *models.Caller, profileID string, windows []*models.AvailabilityWindow) error {
	if !caller.IsAdmin() && caller.ProfileID != profileID {
		return ErrForbidden
	}
	if caller.ProfileID != profileID {
		// Surfaces ErrNotFound for missing and foreign profiles alike.
		if _, err := s.store.GetProfile(ctx, caller.OrganizationID, profileID); err != nil {
			return err
		}
	}

	for _, w := range windows {
		if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
			return ErrInvalidWindow
		}
		if w.Start < 0 || w.End > 24*60 || w.Start >= w.End {
			return ErrInvalidWindow
		}
	}
	if err := checkWindowOverlaps(windows); err != nil {
		return err
	}

	for _, w := range windows {
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		w.ProfileID = profileID
		w.OrganizationID = caller.OrganizationID
	}

	if err := s.store.ReplaceAvailability(ctx, caller.OrganizationID, profileID, windows); err != nil {
		return err
	}

	s.logger.Info().
		Str("profile_id", profileID).
		Int("windows", len(windows)).
		Msg("availability replaced")
	return nil
}

// ListAvailability returns the profile's windows. Any member of the
// organization may read availability.
func (s *Availability) ListAvailability(ctx context.Context, caller *models.Caller, profileID string) ([]*models.AvailabilityWindow, error) {
	return s.store.ListAvailability(ctx, caller.OrganizationID, profileID)
}

// checkWindowOverlaps rejects a set in which two windows on the same weekday
// intersect. Back-to-back windows are allowed.
func checkWindowOverlaps(windows []*models.AvailabilityWindow) error {
	byDay := make(map[time.Weekday][]*models.AvailabilityWindow)
	for _, w := range windows {
		byDay[w.Weekday] = append(byDay[w.Weekday], w)
	}

	for _, day := range byDay {
		sort.Slice(day, func(i, j int) bool { return day[i].Start < day[j].Start })
		for i := 1; i < len(day); i++ {
			if day[i].Start < day[i-1].End {
				return ErrOverlappingWindows
			}
		}
	}
	return nil
}
