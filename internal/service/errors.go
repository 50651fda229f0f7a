package service

import "errors"

var (
	// ErrForbidden means the caller's role does not permit the operation.
	ErrForbidden = errors.New("operation not permitted for this role")

	// ErrCrossTenantReference means a referenced profile or booking belongs
	// to a different organization than the caller.
	ErrCrossTenantReference = errors.New("referenced entity belongs to another organization")

	// ErrInvalidTimeRange means start is not strictly before end, or the
	// range is malformed.
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrPastDate means the requested date is before today.
	ErrPastDate = errors.New("date is in the past")

	// ErrDateTooFar means the requested date exceeds the booking horizon.
	ErrDateTooFar = errors.New("date is beyond the booking horizon")

	// ErrInvalidWindow means an availability window is malformed.
	ErrInvalidWindow = errors.New("invalid availability window")

	// ErrOverlappingWindows means two windows in one submitted set overlap
	// on the same weekday.
	ErrOverlappingWindows = errors.New("availability windows overlap")

	// ErrOutsideAvailability means the requested slot is not fully contained
	// in any of the coach's windows for that weekday.
	ErrOutsideAvailability = errors.New("slot is outside the coach's availability")

	// ErrInvalidTransition means the requested status change is not an edge
	// of the booking state graph.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrInvalidStatus means the status value is not a known tag.
	ErrInvalidStatus = errors.New("unknown status value")

	// ErrInvalidType means the booking type is not a known tag.
	ErrInvalidType = errors.New("unknown booking type")

	// ErrBookingNotConfirmed means attendance was recorded against a booking
	// that is not yet confirmed or completed.
	ErrBookingNotConfirmed = errors.New("booking is not confirmed or completed")

	// ErrProfileHasBookings blocks deletion of a profile that still has
	// pending or confirmed bookings.
	ErrProfileHasBookings = errors.New("profile still has active bookings")
)
