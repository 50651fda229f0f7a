package models

import "time"

// Booking is a scheduled session between a student and a coach profile.
// Both profile references must belong to the same organization as the
// booking itself. Court is optional; when set it participates in
// resource-conflict checks.
type Booking struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	StudentID      string    `json:"student_id"`
	CoachID        string    `json:"coach_id"`
	Date           time.Time `json:"date"`
	Start          Clock     `json:"start"`
	End            Clock     `json:"end"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Court          string    `json:"court,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int64     `json:"version"`
}

// Overlaps reports whether two bookings occupy intersecting time ranges
// on the same date. Back-to-back ranges do not overlap.
func (b *Booking) Overlaps(other *Booking) bool {
	if DateOnly(b.Date) != DateOnly(other.Date) {
		return false
	}
	return RangesOverlap(b.Start, b.End, other.Start, other.End)
}

// transitions is the booking state graph: pending -> confirmed -> completed,
// with cancellation allowed from pending and confirmed. Terminal states
// have no outgoing edges.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}
