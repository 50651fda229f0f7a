package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"courtline/internal/models"
)

const profileColumns = `id, identity_id, organization_id, name, email, phone, role,
                 preferred_sport, notes, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.IdentityID, &p.OrganizationID, &p.Name, &p.Email, &p.Phone,
		&p.Role, &p.PreferredSport, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) CreateProfile(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	query := `INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		p.ID, p.IdentityID, p.OrganizationID, p.Name, p.Email, p.Phone,
		p.Role, p.PreferredSport, p.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *DB) GetProfile(ctx context.Context, orgID, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ? AND organization_id = ?`
	p, err := scanProfile(db.db.QueryRowContext(ctx, query, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (db *DB) GetProfileByIdentity(ctx context.Context, orgID, identityID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE identity_id = ? AND organization_id = ?`
	p, err := scanProfile(db.db.QueryRowContext(ctx, query, identityID, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by identity: %w", err)
	}
	return p, nil
}

func (db *DB) ListProfiles(ctx context.Context, orgID string) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE organization_id = ? ORDER BY name ASC`
	rows, err := db.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (db *DB) UpdateProfile(ctx context.Context, p *models.Profile) error {
	query := `UPDATE profiles
              SET name = ?, email = ?, phone = ?, role = ?, preferred_sport = ?, notes = ?, updated_at = ?
              WHERE id = ? AND organization_id = ?`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query,
		p.Name, p.Email, p.Phone, p.Role, p.PreferredSport, p.Notes, now,
		p.ID, p.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

// DeleteProfile removes the profile together with its availability windows,
// progress records and remaining booking history, attendance included. The
// service layer blocks deletion while the profile still holds non-terminal
// bookings, so only completed and cancelled bookings are swept here.
func (db *DB) DeleteProfile(ctx context.Context, orgID, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM availability_windows WHERE profile_id = ? AND organization_id = ?`, id, orgID); err != nil {
			return fmt.Errorf("failed to delete availability windows: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM progress_records WHERE profile_id = ? AND organization_id = ?`, id, orgID); err != nil {
			return fmt.Errorf("failed to delete progress records: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM attendance WHERE organization_id = ? AND booking_id IN (
                 SELECT id FROM bookings WHERE organization_id = ? AND (student_id = ? OR coach_id = ?)
             )`, orgID, orgID, id, id); err != nil {
			return fmt.Errorf("failed to delete attendance history: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM bookings WHERE organization_id = ? AND (student_id = ? OR coach_id = ?)`,
			orgID, id, id); err != nil {
			return fmt.Errorf("failed to delete booking history: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM profiles WHERE id = ? AND organization_id = ?`, id, orgID)
		if err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (db *DB) CountActiveBookingsForProfile(ctx context.Context, orgID, profileID string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE organization_id = ? AND (student_id = ? OR coach_id = ?)
              AND status IN (?, ?)`
	var count int
	err := db.db.QueryRowContext(ctx, query, orgID, profileID, profileID,
		models.StatusPending, models.StatusConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}
