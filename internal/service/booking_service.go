package service

import (
	"context"
	"time"

	"courtline/internal/database"
	"courtline/internal/domain"
	"courtline/internal/events"
	"courtline/internal/metrics"
	"courtline/internal/models"
	"courtline/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bookings validates and mutates the booking lifecycle. All writes go
// through transactional conflict checks in the store; this layer owns the
// ordering of validations and the role rules.
type Bookings struct {
	store          domain.Store
	availability   *Availability
	eventBus       domain.EventPublisher
	maxBookingDays int
	retry          worker.RetryPolicy
	logger         *zerolog.Logger
}

func NewBookings(store domain.Store, availability *Availability, eventBus domain.EventPublisher, maxBookingDays, txRetries int, logger *zerolog.Logger) *Bookings {
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	if txRetries <= 0 {
		txRetries = models.DefaultTxRetries
	}
	return &Bookings{
		store:          store,
		availability:   availability,
		eventBus:       eventBus,
		maxBookingDays: maxBookingDays,
		retry:          worker.RetryPolicy{MaxRetries: txRetries, InitialDelay: 10 * time.Millisecond, MaxDelay: 200 * time.Millisecond, BackoffFactor: 2},
		logger:         logger,
	}
}

func (s *Bookings) validateDate(date time.Time) error {
	// Stored dates are zero-padded, so string comparison is day comparison.
	now := time.Now()
	day := models.DateOnly(date)
	if day < models.DateOnly(now) {
		return ErrPastDate
	}
	if day > models.DateOnly(now.AddDate(0, 0, s.maxBookingDays)) {
		return ErrDateTooFar
	}
	return nil
}

// Create places a new booking. The validations run in a fixed order so the
// first failure is deterministic: time range, cross-tenant references, role
// permission, availability containment, then the transactional coach and
// court conflict checks. Students may only book for themselves and always
// start in pending; coaches may only book themselves as the coach. An admin
// may set Override to bypass the availability check, which is audited.
func (s *Bookings) Create(ctx context.Context, caller *models.Caller, req domain.CreateBookingRequest) (*models.Booking, error) {
	if req.Start >= req.End {
		return nil, ErrInvalidTimeRange
	}
	if err := s.validateDate(req.Date); err != nil {
		return nil, err
	}
	if !models.ValidBookingType(req.Type) {
		return nil, ErrInvalidType
	}

	// Both profiles must resolve inside the caller's organization. A foreign
	// profile id comes back as ErrNotFound, which we report as a cross-tenant
	// reference without confirming whether the id exists elsewhere.
	student, err := s.store.GetProfile(ctx, caller.OrganizationID, req.StudentID)
	if err != nil {
		return nil, refErr(err)
	}
	coach, err := s.store.GetProfile(ctx, caller.OrganizationID, req.CoachID)
	if err != nil {
		return nil, refErr(err)
	}

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCoach:
		if coach.ID != caller.ProfileID {
			return nil, ErrForbidden
		}
	case models.RoleStudent:
		if student.ID != caller.ProfileID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	if coach.Role == models.RoleStudent {
		return nil, ErrForbidden
	}
	if req.Override && !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	within, err := s.slotAvailable(ctx, caller.OrganizationID, coach.ID, student.ID, req.Date.Weekday(), req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if !within {
		if !req.Override {
			metrics.IncBookingConflict("availability")
			return nil, ErrOutsideAvailability
		}
		metrics.IncAvailabilityOverride()
	}

	status := models.StatusConfirmed
	if caller.Role == models.RoleStudent {
		status = models.StatusPending
	}

	booking := &models.Booking{
		ID:             uuid.NewString(),
		OrganizationID: caller.OrganizationID,
		StudentID:      student.ID,
		CoachID:        coach.ID,
		Date:           req.Date,
		Start:          req.Start,
		End:            req.End,
		Type:           req.Type,
		Status:         status,
		Court:          req.Court,
	}

	err = s.retry.Do(database.IsTransient, func() error {
		return s.store.CreateBookingChecked(ctx, booking)
	})
	if err != nil {
		err = conflictFallback(err, booking.Court)
		switch err {
		case database.ErrCoachConflict:
			metrics.IncBookingConflict("coach")
		case database.ErrCourtConflict:
			metrics.IncBookingConflict("court")
		}
		return nil, err
	}

	metrics.IncBookingCreated(booking.Status)
	s.publish(events.EventBookingCreated, booking, caller)
	if !within {
		_ = s.eventBus.PublishJSON(events.EventAvailabilityOverride, events.OverridePayload{
			BookingID:      booking.ID,
			OrganizationID: booking.OrganizationID,
			ActorProfileID: caller.ProfileID,
		})
		s.logger.Warn().
			Str("booking_id", booking.ID).
			Str("actor", caller.ProfileID).
			Msg("availability override used")
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("coach_id", booking.CoachID).
		Str("student_id", booking.StudentID).
		Str("status", booking.Status).
		Msg("booking created")
	return booking, nil
}

// Transition moves a booking along the state graph. Admins may take any
// edge; the booking's coach may confirm, complete or cancel it; a student
// may only cancel their own booking while it is still pending.
func (s *Bookings) Transition(ctx context.Context, caller *models.Caller, bookingID, newStatus string) (*models.Booking, error) {
	booking, err := s.Get(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleCoach:
		if booking.CoachID != caller.ProfileID {
			return nil, ErrForbidden
		}
	case models.RoleStudent:
		if booking.StudentID != caller.ProfileID ||
			newStatus != models.StatusCancelled ||
			booking.Status != models.StatusPending {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if newStatus != models.StatusPending && newStatus != models.StatusConfirmed &&
		newStatus != models.StatusCompleted && newStatus != models.StatusCancelled {
		return nil, ErrInvalidStatus
	}
	if !models.CanTransition(booking.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	err = s.retry.Do(database.IsTransient, func() error {
		return s.store.UpdateBookingStatus(ctx, caller.OrganizationID, bookingID, booking.Version, newStatus)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.GetBooking(ctx, caller.OrganizationID, bookingID)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventBookingTransitioned, updated, caller)
	s.logger.Info().
		Str("booking_id", bookingID).
		Str("from", booking.Status).
		Str("to", newStatus).
		Msg("booking transitioned")
	return updated, nil
}

// Reschedule moves a booking to a new slot under the same availability and
// conflict checks as creation, excluding the booking itself. Only
// non-terminal bookings can move. An admin may set override to bypass the
// availability check, which is audited the same way as on creation.
func (s *Bookings) Reschedule(ctx context.Context, caller *models.Caller, bookingID string, newDate time.Time, newStart, newEnd models.Clock, override bool) (*models.Booking, error) {
	booking, err := s.Get(ctx, caller, bookingID)
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

	if models.IsTerminal(booking.Status) {
		return nil, ErrInvalidTransition
	}
	if newStart >= newEnd {
		return nil, ErrInvalidTimeRange
	}
	if err := s.validateDate(newDate); err != nil {
		return nil, err
	}
	if override && !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	within, err := s.slotAvailable(ctx, caller.OrganizationID, booking.CoachID, booking.StudentID, newDate.Weekday(), newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if !within {
		if !override {
			metrics.IncBookingConflict("availability")
			return nil, ErrOutsideAvailability
		}
		metrics.IncAvailabilityOverride()
	}

	moved := *booking
	moved.Date = newDate
	moved.Start = newStart
	moved.End = newEnd

	err = s.retry.Do(database.IsTransient, func() error {
		return s.store.RescheduleBookingChecked(ctx, &moved, booking.Version)
	})
	if err != nil {
		err = conflictFallback(err, moved.Court)
		switch err {
		case database.ErrCoachConflict:
			metrics.IncBookingConflict("coach")
		case database.ErrCourtConflict:
			metrics.IncBookingConflict("court")
		}
		return nil, err
	}

	updated, err := s.store.GetBooking(ctx, caller.OrganizationID, bookingID)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventBookingRescheduled, updated, caller)
	if !within {
		_ = s.eventBus.PublishJSON(events.EventAvailabilityOverride, events.OverridePayload{
			BookingID:      updated.ID,
			OrganizationID: updated.OrganizationID,
			ActorProfileID: caller.ProfileID,
		})
		s.logger.Warn().
			Str("booking_id", updated.ID).
			Str("actor", caller.ProfileID).
			Msg("availability override used")
	}
	s.logger.Info().
		Str("booking_id", bookingID).
		Str("date", models.DateOnly(newDate)).
		Msg("booking rescheduled")
	return updated, nil
}

// Delete hard-removes a booking and its attendance record. Admin only;
// cancellation is the normal path for everyone else.
func (s *Bookings) Delete(ctx context.Context, caller *models.Caller, bookingID string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	booking, err := s.store.GetBooking(ctx, caller.OrganizationID, bookingID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBooking(ctx, caller.OrganizationID, bookingID); err != nil {
		return err
	}
	s.publish(events.EventBookingDeleted, booking, caller)
	s.logger.Info().Str("booking_id", bookingID).Msg("booking deleted")
	return nil
}

// Get returns one booking. Non-admins only see bookings they participate
// in; anything else reads as not found.
func (s *Bookings) Get(ctx context.Context, caller *models.Caller, bookingID string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, caller.OrganizationID, bookingID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && booking.StudentID != caller.ProfileID && booking.CoachID != caller.ProfileID {
		return nil, database.ErrNotFound
	}
	return booking, nil
}

// List returns bookings in [from,to]. Admins see the whole organization;
// coaches and students see the bookings they participate in.
func (s *Bookings) List(ctx context.Context, caller *models.Caller, from, to time.Time) ([]*models.Booking, error) {
	if caller.IsAdmin() {
		return s.store.ListBookings(ctx, caller.OrganizationID, from, to)
	}
	return s.store.ListBookingsForProfile(ctx, caller.OrganizationID, caller.ProfileID, from, to)
}

// slotAvailable checks the slot against the coach's windows and, when the
// student has declared any windows of their own, against the student's as
// well. A student with no windows is bookable at any time.
func (s *Bookings) slotAvailable(ctx context.Context, orgID, coachID, studentID string, weekday time.Weekday, start, end models.Clock) (bool, error) {
	within, err := s.availability.IsWithinAvailability(ctx, orgID, coachID, weekday, start, end)
	if err != nil || !within {
		return false, err
	}

	declared, err := s.store.ListAvailability(ctx, orgID, studentID)
	if err != nil {
		return false, err
	}
	if len(declared) == 0 {
		return true, nil
	}
	return s.availability.IsWithinAvailability(ctx, orgID, studentID, weekday, start, end)
}

func (s *Bookings) publish(eventType string, b *models.Booking, caller *models.Caller) {
	err := s.eventBus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID:      b.ID,
		OrganizationID: b.OrganizationID,
		StudentID:      b.StudentID,
		CoachID:        b.CoachID,
		Date:           b.Date,
		Start:          b.Start.String(),
		End:            b.End.String(),
		Status:         b.Status,
		ActorProfileID: caller.ProfileID,
		ActorRole:      caller.Role,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func refErr(err error) error {
	if err == database.ErrNotFound {
		return ErrCrossTenantReference
	}
	return err
}

// conflictFallback maps a still-transient error left over after the retry
// budget onto the logical conflict the caller can act on. Sustained write
// contention on the slot is reported as the slot being taken rather than as
// a store internals error.
func conflictFallback(err error, court string) error {
	if !database.IsTransient(err) {
		return err
	}
	if court != "" {
		return database.ErrCourtConflict
	}
	return database.ErrCoachConflict
}
