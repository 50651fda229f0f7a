package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound covers both a missing entity and an entity owned by a
	// different organization; callers never learn which.
	ErrNotFound = errors.New("not found")

	// ErrCoachConflict means an existing non-cancelled booking for the same
	// coach and date overlaps the requested range.
	ErrCoachConflict = errors.New("coach already booked for this slot")

	// ErrCourtConflict means an existing non-cancelled booking for the same
	// court and date overlaps the requested range.
	ErrCourtConflict = errors.New("court already booked for this slot")

	// ErrConcurrentModification signals a lost optimistic-version race.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)

// IsTransient reports whether err is a transient sqlite serialization
// failure worth retrying, as opposed to a logical conflict.
func IsTransient(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}
