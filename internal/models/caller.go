package models

// Caller is the resolved tenant context for one request: which organization
// the call operates in, which profile the caller is, and with what role.
// It is passed explicitly into every engine operation; there is no ambient
// "current organization" state.
type Caller struct {
	OrganizationID string `json:"organization_id"`
	ProfileID      string `json:"profile_id"`
	Role           string `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// IsCoach reports whether the caller holds the coach role.
func (c *Caller) IsCoach() bool { return c.Role == RoleCoach }

// RoleEntry is a cached role lookup result. Entries expire after the
// configured staleness window.
type RoleEntry struct {
	ProfileID string `json:"profile_id"`
	Role      string `json:"role"`
}
