package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"courtline/internal/models"
)

// ReplaceAvailability swaps the full window set of a profile in one
// transaction. Window validation happens in the service layer; the store
// only persists.
func (db *DB) ReplaceAvailability(ctx context.Context, orgID, profileID string, windows []*models.AvailabilityWindow) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM profiles WHERE id = ? AND organization_id = ?`,
			profileID, orgID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check profile: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM availability_windows WHERE profile_id = ? AND organization_id = ?`,
			profileID, orgID); err != nil {
			return fmt.Errorf("failed to clear availability windows: %w", err)
		}

		query := `INSERT INTO availability_windows (id, profile_id, organization_id, weekday, start_time, end_time)
                  VALUES (?, ?, ?, ?, ?, ?)`
		for _, w := range windows {
			if _, err := tx.ExecContext(ctx, query,
				w.ID, profileID, orgID, int(w.Weekday), w.Start.String(), w.End.String()); err != nil {
				return fmt.Errorf("failed to insert availability window: %w", err)
			}
		}
		return nil
	})
}

func (db *DB) ListAvailability(ctx context.Context, orgID, profileID string) ([]*models.AvailabilityWindow, error) {
	query := `SELECT id, profile_id, organization_id, weekday, start_time, end_time
              FROM availability_windows
              WHERE profile_id = ? AND organization_id = ?
              ORDER BY weekday ASC, start_time ASC`
	return db.queryWindows(ctx, query, profileID, orgID)
}

func (db *DB) ListAvailabilityForWeekday(ctx context.Context, orgID, profileID string, weekday time.Weekday) ([]*models.AvailabilityWindow, error) {
	query := `SELECT id, profile_id, organization_id, weekday, start_time, end_time
              FROM availability_windows
              WHERE profile_id = ? AND organization_id = ? AND weekday = ?
              ORDER BY start_time ASC`
	return db.queryWindows(ctx, query, profileID, orgID, int(weekday))
}

func (db *DB) queryWindows(ctx context.Context, query string, args ...any) ([]*models.AvailabilityWindow, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability windows: %w", err)
	}
	defer rows.Close()

	var windows []*models.AvailabilityWindow
	for rows.Next() {
		w := &models.AvailabilityWindow{}
		var weekday int
		var startStr, endStr string
		if err := rows.Scan(&w.ID, &w.ProfileID, &w.OrganizationID, &weekday, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("failed to scan availability window: %w", err)
		}
		w.Weekday = time.Weekday(weekday)
		if w.Start, err = models.ParseClock(startStr); err != nil {
			return nil, fmt.Errorf("corrupt start_time for window %s: %w", w.ID, err)
		}
		if w.End, err = models.ParseClock(endStr); err != nil {
			return nil, fmt.Errorf("corrupt end_time for window %s: %w", w.ID, err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
