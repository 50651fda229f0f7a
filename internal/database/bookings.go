package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"courtline/internal/models"
)

const bookingColumns = `id, organization_id, student_id, coach_id, date, start_time,
                 end_time, type, status, court, created_at, updated_at, version`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var dateStr, startStr, endStr string
	err := row.Scan(
		&b.ID, &b.OrganizationID, &b.StudentID, &b.CoachID, &dateStr, &startStr,
		&endStr, &b.Type, &b.Status, &b.Court, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	if b.Date, err = models.ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("corrupt date for booking %s: %w", b.ID, err)
	}
	if b.Start, err = models.ParseClock(startStr); err != nil {
		return nil, fmt.Errorf("corrupt start_time for booking %s: %w", b.ID, err)
	}
	if b.End, err = models.ParseClock(endStr); err != nil {
		return nil, fmt.Errorf("corrupt end_time for booking %s: %w", b.ID, err)
	}
	return &b, nil
}

// checkConflicts counts overlapping non-cancelled bookings for the coach and,
// when a court is set, for the court. Zero-padded HH:MM strings compare
// lexicographically in date/time order, so the overlap test runs on TEXT.
// excludeID removes the booking itself from comparison during reschedules.
func checkConflicts(ctx context.Context, tx *sql.Tx, b *models.Booking, excludeID string) error {
	coachQuery := `SELECT COUNT(*) FROM bookings
                   WHERE organization_id = ? AND coach_id = ? AND date = ?
                   AND status != ? AND start_time < ? AND end_time > ? AND id != ?`
	var count int
	err := tx.QueryRowContext(ctx, coachQuery,
		b.OrganizationID, b.CoachID, models.DateOnly(b.Date),
		models.StatusCancelled, b.End.String(), b.Start.String(), excludeID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check coach conflicts: %w", err)
	}
	if count > 0 {
		return ErrCoachConflict
	}

	if b.Court == "" {
		return nil
	}

	courtQuery := `SELECT COUNT(*) FROM bookings
                   WHERE organization_id = ? AND court = ? AND date = ?
                   AND status != ? AND start_time < ? AND end_time > ? AND id != ?`
	err = tx.QueryRowContext(ctx, courtQuery,
		b.OrganizationID, b.Court, models.DateOnly(b.Date),
		models.StatusCancelled, b.End.String(), b.Start.String(), excludeID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check court conflicts: %w", err)
	}
	if count > 0 {
		return ErrCourtConflict
	}
	return nil
}

// CreateBookingChecked runs the conflict checks and the insert as one
// transaction so two concurrent requests for overlapping slots cannot both
// commit.
func (db *DB) CreateBookingChecked(ctx context.Context, b *models.Booking) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkConflicts(ctx, tx, b, ""); err != nil {
			return err
		}

		now := time.Now().UTC()
		query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query,
			b.ID, b.OrganizationID, b.StudentID, b.CoachID, models.DateOnly(b.Date),
			b.Start.String(), b.End.String(), b.Type, b.Status, b.Court, now, now, 1,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		b.CreatedAt = now
		b.UpdatedAt = now
		b.Version = 1
		return nil
	})
}

// RescheduleBookingChecked moves a booking to a new slot under the same
// transactional conflict checks, excluding the booking itself. The version
// guard rejects a booking modified since it was read.
func (db *DB) RescheduleBookingChecked(ctx context.Context, b *models.Booking, fromVersion int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkConflicts(ctx, tx, b, b.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		query := `UPDATE bookings
                  SET date = ?, start_time = ?, end_time = ?, version = version + 1, updated_at = ?
                  WHERE id = ? AND organization_id = ? AND version = ?`
		result, err := tx.ExecContext(ctx, query,
			models.DateOnly(b.Date), b.Start.String(), b.End.String(), now,
			b.ID, b.OrganizationID, fromVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to reschedule booking: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrConcurrentModification
		}
		b.UpdatedAt = now
		b.Version = fromVersion + 1
		return nil
	})
}

func (db *DB) GetBooking(ctx context.Context, orgID, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? AND organization_id = ?`
	b, err := scanBooking(db.db.QueryRowContext(ctx, query, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (db *DB) ListBookings(ctx context.Context, orgID string, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE organization_id = ? AND date >= ? AND date <= ?
              ORDER BY date ASC, start_time ASC`
	return db.queryBookings(ctx, query, orgID, models.DateOnly(from), models.DateOnly(to))
}

func (db *DB) ListBookingsForProfile(ctx context.Context, orgID, profileID string, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE organization_id = ? AND (student_id = ? OR coach_id = ?) AND date >= ? AND date <= ?
              ORDER BY date ASC, start_time ASC`
	return db.queryBookings(ctx, query, orgID, profileID, profileID, models.DateOnly(from), models.DateOnly(to))
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) UpdateBookingStatus(ctx context.Context, orgID, id string, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND organization_id = ? AND version = ?`
	result, err := db.db.ExecContext(ctx, query, status, time.Now().UTC(), id, orgID, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// DeleteBooking hard-deletes the booking and its attendance record in one
// transaction. If either delete fails the whole operation rolls back.
func (db *DB) DeleteBooking(ctx context.Context, orgID, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM attendance WHERE booking_id = ? AND organization_id = ?`, id, orgID); err != nil {
			return fmt.Errorf("failed to delete attendance: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM bookings WHERE id = ? AND organization_id = ?`, id, orgID)
		if err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}
