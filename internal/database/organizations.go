package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"courtline/internal/models"
)

func (db *DB) CreateOrganization(ctx context.Context, org *models.Organization) error {
	now := time.Now().UTC()
	query := `INSERT INTO organizations (id, name, slug, created_at) VALUES (?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query, org.ID, org.Name, org.Slug, now)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	org.CreatedAt = now
	return nil
}

func (db *DB) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	query := `SELECT id, name, slug, created_at FROM organizations WHERE id = ?`
	err := db.db.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}
