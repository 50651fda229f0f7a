package service

import (
	"context"
	"iter"
	"time"

	"courtline/internal/database"
	"courtline/internal/domain"
	"courtline/internal/events"
	"courtline/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Tracker records attendance against bookings and free-form progress notes
// against profiles.
type Tracker struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewTracker(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *Tracker {
	return &Tracker{store: store, eventBus: eventBus, logger: logger}
}

// RecordAttendance upserts the attendance record of a booking. Only the
// booking's coach or an admin may record, and only once the booking is
// confirmed or completed.
func (s *Tracker) RecordAttendance(ctx context.Context, caller *models.Caller, bookingID, status, notes string) (*models.Attendance, error) {
	if !models.ValidAttendanceStatus(status) {
		return nil, ErrInvalidStatus
	}

	booking, err := s.store.GetBooking(ctx, caller.OrganizationID, bookingID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCoach:
		if booking.CoachID != caller.ProfileID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if booking.Status != models.StatusConfirmed && booking.Status != models.StatusCompleted {
		return nil, ErrBookingNotConfirmed
	}

	att := &models.Attendance{
		ID:             uuid.NewString(),
		BookingID:      bookingID,
		OrganizationID: caller.OrganizationID,
		Status:         status,
		Notes:          notes,
	}
	if err := s.store.UpsertAttendance(ctx, att); err != nil {
		return nil, err
	}

	_ = s.eventBus.PublishJSON(events.EventAttendanceRecorded, att)
	s.logger.Info().
		Str("booking_id", bookingID).
		Str("status", status).
		Msg("attendance recorded")
	return att, nil
}

// ListAttendance returns attendance records matching the filter. Coaches
// and admins list freely within the organization; a student must name one
// of their own bookings.
func (s *Tracker) ListAttendance(ctx context.Context, caller *models.Caller, filter domain.AttendanceFilter) ([]*models.Attendance, error) {
	if caller.Role == models.RoleStudent {
		if filter.BookingID == "" {
			return nil, ErrForbidden
		}
		booking, err := s.store.GetBooking(ctx, caller.OrganizationID, filter.BookingID)
		if err != nil {
			return nil, err
		}
		if booking.StudentID != caller.ProfileID {
			return nil, database.ErrNotFound
		}
	}
	return s.store.ListAttendance(ctx, caller.OrganizationID, filter)
}

// AddProgress appends a dated note to a profile. Coach or admin only.
func (s *Tracker) AddProgress(ctx context.Context, caller *models.Caller, profileID string, date time.Time, notes string) (*models.ProgressRecord, error) {
	if !caller.IsAdmin() && !caller.IsCoach() {
		return nil, ErrForbidden
	}

	if _, err := s.store.GetProfile(ctx, caller.OrganizationID, profileID); err != nil {
		return nil, refErr(err)
	}

	rec := &models.ProgressRecord{
		ID:             uuid.NewString(),
		ProfileID:      profileID,
		OrganizationID: caller.OrganizationID,
		Date:           date,
		Notes:          notes,
	}
	if err := s.store.CreateProgress(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteProgress removes one note. Coach or admin only.
func (s *Tracker) DeleteProgress(ctx context.Context, caller *models.Caller, progressID string) error {
	if !caller.IsAdmin() && !caller.IsCoach() {
		return ErrForbidden
	}
	return s.store.DeleteProgress(ctx, caller.OrganizationID, progressID)
}

// ListProgress yields a profile's notes newest first. Students only see
// their own history. The sequence queries lazily on each iteration, so a
// range started after new notes land will include them.
func (s *Tracker) ListProgress(ctx context.Context, caller *models.Caller, profileID string, from, to time.Time) iter.Seq2[*models.ProgressRecord, error] {
	return func(yield func(*models.ProgressRecord, error) bool) {
		if caller.Role == models.RoleStudent && caller.ProfileID != profileID {
			yield(nil, ErrForbidden)
			return
		}

		records, err := s.store.ListProgress(ctx, caller.OrganizationID, profileID, from, to)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, rec := range records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}
