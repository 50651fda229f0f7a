package models

import "time"

// Attendance is the post-hoc record of whether a booking was attended.
// At most one row exists per booking; recording is an upsert.
type Attendance struct {
	ID             string    `json:"id"`
	BookingID      string    `json:"booking_id"`
	OrganizationID string    `json:"organization_id"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProgressRecord is a free-form dated note on a profile's development,
// independent of any booking.
type ProgressRecord struct {
	ID             string    `json:"id"`
	ProfileID      string    `json:"profile_id"`
	OrganizationID string    `json:"organization_id"`
	Date           time.Time `json:"date"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}
