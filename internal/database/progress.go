package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"courtline/internal/models"
)

func (db *DB) CreateProgress(ctx context.Context, r *models.ProgressRecord) error {
	now := time.Now().UTC()
	query := `INSERT INTO progress_records (id, profile_id, organization_id, date, notes, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		r.ID, r.ProfileID, r.OrganizationID, models.DateOnly(r.Date), r.Notes, now)
	if err != nil {
		return fmt.Errorf("failed to create progress record: %w", err)
	}
	r.CreatedAt = now
	return nil
}

func (db *DB) GetProgress(ctx context.Context, orgID, id string) (*models.ProgressRecord, error) {
	var r models.ProgressRecord
	var dateStr string
	query := `SELECT id, profile_id, organization_id, date, notes, created_at
              FROM progress_records WHERE id = ? AND organization_id = ?`
	err := db.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&r.ID, &r.ProfileID, &r.OrganizationID, &dateStr, &r.Notes, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress record: %w", err)
	}
	if r.Date, err = models.ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("corrupt date for progress record %s: %w", r.ID, err)
	}
	return &r, nil
}

func (db *DB) DeleteProgress(ctx context.Context, orgID, id string) error {
	result, err := db.db.ExecContext(ctx,
		`DELETE FROM progress_records WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete progress record: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListProgress(ctx context.Context, orgID, profileID string, from, to time.Time) ([]*models.ProgressRecord, error) {
	query := `SELECT id, profile_id, organization_id, date, notes, created_at
              FROM progress_records
              WHERE profile_id = ? AND organization_id = ?`
	args := []any{profileID, orgID}

	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, models.DateOnly(from))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, models.DateOnly(to))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress records: %w", err)
	}
	defer rows.Close()

	var records []*models.ProgressRecord
	for rows.Next() {
		r := &models.ProgressRecord{}
		var dateStr string
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.OrganizationID, &dateStr, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		if r.Date, err = models.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("corrupt date for progress record %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
