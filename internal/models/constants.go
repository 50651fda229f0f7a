package models

// Profile roles within an organization.
const (
	RoleAdmin   = "admin"
	RoleCoach   = "coach"
	RoleStudent = "student"
)

// Booking lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Booking types.
const (
	TypeLesson     = "lesson"
	TypeEvaluation = "evaluation"
	TypeRecovery   = "recovery"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
	AttendanceAbsent  = "absent"
)

const (
	// DefaultRoleCacheTTL bounds how stale a cached role lookup may be, in seconds.
	DefaultRoleCacheTTL = 5 * 60

	// DefaultMaxBookingDays limits how far ahead a booking may be placed.
	DefaultMaxBookingDays = 365

	// DefaultTxRetries bounds retries of a transaction that failed with a
	// transient store error before the logical conflict is surfaced.
	DefaultTxRetries = 3
)

// ValidRole reports whether s is a known role tag.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleCoach || s == RoleStudent
}

// ValidBookingType reports whether s is a known booking type.
func ValidBookingType(s string) bool {
	return s == TypeLesson || s == TypeEvaluation || s == TypeRecovery
}

// ValidAttendanceStatus reports whether s is a recordable attendance status.
func ValidAttendanceStatus(s string) bool {
	return s == AttendancePresent || s == AttendanceLate || s == AttendanceAbsent
}
