package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"courtline/internal/domain"
	"courtline/internal/models"
)

const attendanceColumns = `id, booking_id, organization_id, status, notes, created_at, updated_at`

func scanAttendance(row interface{ Scan(...any) error }) (*models.Attendance, error) {
	var a models.Attendance
	err := row.Scan(&a.ID, &a.BookingID, &a.OrganizationID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertAttendance creates the attendance row on first recording and updates
// it in place afterwards; the UNIQUE constraint on booking_id guarantees a
// single row per booking.
func (db *DB) UpsertAttendance(ctx context.Context, a *models.Attendance) error {
	now := time.Now().UTC()
	query := `INSERT INTO attendance (id, booking_id, organization_id, status, notes, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(booking_id) DO UPDATE SET
                  status = excluded.status,
                  notes = excluded.notes,
                  updated_at = excluded.updated_at`
	_, err := db.db.ExecContext(ctx, query,
		a.ID, a.BookingID, a.OrganizationID, a.Status, a.Notes, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}

	// Re-read so the caller sees the surviving row's id and timestamps.
	stored, err := db.GetAttendanceByBooking(ctx, a.OrganizationID, a.BookingID)
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

func (db *DB) GetAttendanceByBooking(ctx context.Context, orgID, bookingID string) (*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE booking_id = ? AND organization_id = ?`
	a, err := scanAttendance(db.db.QueryRowContext(ctx, query, bookingID, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

func (db *DB) ListAttendance(ctx context.Context, orgID string, filter domain.AttendanceFilter) ([]*models.Attendance, error) {
	query := `SELECT a.id, a.booking_id, a.organization_id, a.status, a.notes, a.created_at, a.updated_at
              FROM attendance a
              JOIN bookings b ON b.id = a.booking_id
              WHERE a.organization_id = ?`
	args := []any{orgID}

	if filter.BookingID != "" {
		query += ` AND a.booking_id = ?`
		args = append(args, filter.BookingID)
	}
	if filter.Status != "" {
		query += ` AND a.status = ?`
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() {
		query += ` AND b.date >= ? AND b.date <= ?`
		args = append(args, models.DateOnly(filter.From), models.DateOnly(filter.To))
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
