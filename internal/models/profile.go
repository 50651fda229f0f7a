package models

import "time"

// Organization is the tenant boundary. Every other entity carries its ID
// and no query ever crosses it.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a person inside one organization. IdentityID references the
// external identity provider; Role is one of admin, coach or student.
type Profile struct {
	ID             string    `json:"id"`
	IdentityID     string    `json:"identity_id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Role           string    `json:"role"`
	PreferredSport string    `json:"preferred_sport,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AvailabilityWindow is a weekly recurring bookable range for one profile.
// Start and End are same-day wall-clock times with Start < End.
type AvailabilityWindow struct {
	ID             string       `json:"id"`
	ProfileID      string       `json:"profile_id"`
	OrganizationID string       `json:"organization_id"`
	Weekday        time.Weekday `json:"weekday"`
	Start          Clock        `json:"start"`
	End            Clock        `json:"end"`
}

// Contains reports whether the window fully contains [start,end].
// Exact boundary matches count as contained.
func (w AvailabilityWindow) Contains(start, end Clock) bool {
	return w.Start <= start && end <= w.End
}
