package domain

import (
	"context"
	"iter"
	"time"

	"courtline/internal/models"
)

// Store is the persistence contract. Every read and mutation is scoped by
// organization id; a row from another tenant behaves exactly like a row
// that does not exist.
type Store interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)

	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, orgID, id string) (*models.Profile, error)
	GetProfileByIdentity(ctx context.Context, orgID, identityID string) (*models.Profile, error)
	ListProfiles(ctx context.Context, orgID string) ([]*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	// DeleteProfile removes the profile together with its availability
	// windows, progress records and remaining booking history in one
	// transaction.
	DeleteProfile(ctx context.Context, orgID, id string) error
	CountActiveBookingsForProfile(ctx context.Context, orgID, profileID string) (int, error)

	// ReplaceAvailability swaps the full window set of a profile atomically.
	ReplaceAvailability(ctx context.Context, orgID, profileID string, windows []*models.AvailabilityWindow) error
	ListAvailability(ctx context.Context, orgID, profileID string) ([]*models.AvailabilityWindow, error)
	ListAvailabilityForWeekday(ctx context.Context, orgID, profileID string, weekday time.Weekday) ([]*models.AvailabilityWindow, error)

	// CreateBookingChecked runs the coach and court conflict checks and the
	// insert inside one transaction, returning ErrCoachConflict or
	// ErrCourtConflict when an existing non-cancelled booking overlaps.
	CreateBookingChecked(ctx context.Context, b *models.Booking) error
	// RescheduleBookingChecked moves a booking to a new slot under the same
	// transactional conflict checks, excluding the booking itself.
	RescheduleBookingChecked(ctx context.Context, b *models.Booking, fromVersion int64) error
	GetBooking(ctx context.Context, orgID, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, orgID string, from, to time.Time) ([]*models.Booking, error)
	ListBookingsForProfile(ctx context.Context, orgID, profileID string, from, to time.Time) ([]*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, orgID, id string, fromVersion int64, status string) error
	// DeleteBooking hard-deletes the booking and its attendance record in
	// one transaction.
	DeleteBooking(ctx context.Context, orgID, id string) error

	UpsertAttendance(ctx context.Context, a *models.Attendance) error
	GetAttendanceByBooking(ctx context.Context, orgID, bookingID string) (*models.Attendance, error)
	ListAttendance(ctx context.Context, orgID string, filter AttendanceFilter) ([]*models.Attendance, error)

	CreateProgress(ctx context.Context, r *models.ProgressRecord) error
	GetProgress(ctx context.Context, orgID, id string) (*models.ProgressRecord, error)
	DeleteProgress(ctx context.Context, orgID, id string) error
	ListProgress(ctx context.Context, orgID, profileID string, from, to time.Time) ([]*models.ProgressRecord, error)
}

// AttendanceFilter narrows attendance listings. Zero values mean "any".
type AttendanceFilter struct {
	BookingID string
	Status    string
	From      time.Time
	To        time.Time
}

// RoleResolver looks up a caller's profile and role inside an organization.
type RoleResolver interface {
	ResolveRole(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error)
}

// RoleCache caches role lookups for the configured staleness window.
// Get returns nil without error on a miss.
type RoleCache interface {
	Get(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error)
	Set(ctx context.Context, identityID, orgID string, entry *models.RoleEntry) error
	Invalidate(ctx context.Context, identityID, orgID string) error
}

// EventPublisher hands domain events to the audit/notification collaborator.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService validates and mutates bookings.
type BookingService interface {
	Create(ctx context.Context, caller *models.Caller, req CreateBookingRequest) (*models.Booking, error)
	Transition(ctx context.Context, caller *models.Caller, bookingID, newStatus string) (*models.Booking, error)
	Reschedule(ctx context.Context, caller *models.Caller, bookingID string, newDate time.Time, newStart, newEnd models.Clock, override bool) (*models.Booking, error)
	Delete(ctx context.Context, caller *models.Caller, bookingID string) error
	Get(ctx context.Context, caller *models.Caller, bookingID string) (*models.Booking, error)
	List(ctx context.Context, caller *models.Caller, from, to time.Time) ([]*models.Booking, error)
}

// CreateBookingRequest is the typed argument set for booking creation.
type CreateBookingRequest struct {
	StudentID string
	CoachID   string
	Date      time.Time
	Start     models.Clock
	End       models.Clock
	Type      string
	Court     string
	// Override lets an admin bypass the availability containment check.
	// Its use is audited.
	Override bool
}

// AvailabilityService owns the weekly recurring window sets.
type AvailabilityService interface {
	IsWithinAvailability(ctx context.Context, orgID, profileID string, weekday time.Weekday, start, end models.Clock) (bool, error)
	SetAvailability(ctx context.Context, caller *models.Caller, profileID string, windows []*models.AvailabilityWindow) error
	ListAvailability(ctx context.Context, caller *models.Caller, profileID string) ([]*models.AvailabilityWindow, error)
}

// TrackerService records attendance and progress against committed bookings
// and profiles.
type TrackerService interface {
	RecordAttendance(ctx context.Context, caller *models.Caller, bookingID, status, notes string) (*models.Attendance, error)
	ListAttendance(ctx context.Context, caller *models.Caller, filter AttendanceFilter) ([]*models.Attendance, error)
	AddProgress(ctx context.Context, caller *models.Caller, profileID string, date time.Time, notes string) (*models.ProgressRecord, error)
	DeleteProgress(ctx context.Context, caller *models.Caller, progressID string) error
	ListProgress(ctx context.Context, caller *models.Caller, profileID string, from, to time.Time) iter.Seq2[*models.ProgressRecord, error]
}

// ProfileService manages profiles within the caller's organization.
type ProfileService interface {
	Create(ctx context.Context, caller *models.Caller, p *models.Profile) (*models.Profile, error)
	Get(ctx context.Context, caller *models.Caller, profileID string) (*models.Profile, error)
	List(ctx context.Context, caller *models.Caller) ([]*models.Profile, error)
	Update(ctx context.Context, caller *models.Caller, p *models.Profile) (*models.Profile, error)
	Delete(ctx context.Context, caller *models.Caller, profileID string) error
}
