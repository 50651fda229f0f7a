package models

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day in minutes since midnight.
// Bookings and availability windows store times as zero-padded "HH:MM"
// strings; zero-padding makes lexicographic order match chronological
// order, so the database compares the stored TEXT directly.
type Clock int

// ParseClock parses a zero-padded "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// RangesOverlap reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func RangesOverlap(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && bStart < aEnd
}

// DateOnly formats t as the canonical stored date.
func DateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a canonical stored date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
