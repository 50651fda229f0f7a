package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtline/internal/database"
	"courtline/internal/models"
	"courtline/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRoles maps "identity/org" to a role entry and counts lookups.
type stubRoles struct {
	entries map[string]*models.RoleEntry
	err     error
	calls   int
}

func (s *stubRoles) ResolveRole(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	entry, ok := s.entries[identityID+"/"+orgID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return entry, nil
}

// brokenCache fails every operation.
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error) {
	return nil, errors.New("cache down")
}
func (brokenCache) Set(ctx context.Context, identityID, orgID string, entry *models.RoleEntry) error {
	return errors.New("cache down")
}
func (brokenCache) Invalidate(ctx context.Context, identityID, orgID string) error {
	return errors.New("cache down")
}

func newTestResolver(roles *stubRoles) *Resolver {
	logger := zerolog.Nop()
	return NewResolver(roles, repository.NewMemoryRoleCache(time.Minute), &logger)
}

func TestResolveGuards(t *testing.T) {
	r := newTestResolver(&stubRoles{})
	ctx := context.Background()

	_, err := r.Resolve(ctx, Identity{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = r.Resolve(ctx, Identity{ID: "user-1"})
	assert.ErrorIs(t, err, ErrNoActiveOrganization)

	// A known identity in an organization it never joined.
	_, err = r.Resolve(ctx, Identity{ID: "user-1", OrganizationID: "org-1"})
	assert.ErrorIs(t, err, ErrNoActiveOrganization)
}

func TestResolveCachesRole(t *testing.T) {
	roles := &stubRoles{entries: map[string]*models.RoleEntry{
		"user-1/org-1": {ProfileID: "profile-1", Role: models.RoleCoach},
	}}
	r := newTestResolver(roles)
	ctx := context.Background()
	id := Identity{ID: "user-1", OrganizationID: "org-1"}

	caller, err := r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "org-1", caller.OrganizationID)
	assert.Equal(t, "profile-1", caller.ProfileID)
	assert.Equal(t, models.RoleCoach, caller.Role)
	assert.Equal(t, 1, roles.calls)

	// Second resolve is served from the cache.
	_, err = r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, roles.calls)

	// Invalidation forces a fresh lookup.
	require.NoError(t, r.Invalidate(ctx, id))
	_, err = r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, roles.calls)
}

func TestResolveDegradesWithoutCache(t *testing.T) {
	roles := &stubRoles{entries: map[string]*models.RoleEntry{
		"user-1/org-1": {ProfileID: "profile-1", Role: models.RoleAdmin},
	}}
	logger := zerolog.Nop()
	r := NewResolver(roles, brokenCache{}, &logger)

	caller, err := r.Resolve(context.Background(), Identity{ID: "user-1", OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, caller.Role)
	assert.Equal(t, 1, roles.calls)
}

func TestStoreRoleResolver(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	org := &models.Organization{ID: "org-1", Name: "Club", Slug: "club"}
	require.NoError(t, db.CreateOrganization(ctx, org))
	p := &models.Profile{
		ID:             "profile-1",
		IdentityID:     "user-1",
		OrganizationID: org.ID,
		Name:           "Coach",
		Email:          "coach@example.com",
		Role:           models.RoleCoach,
	}
	require.NoError(t, db.CreateProfile(ctx, p))

	resolver := NewStoreRoleResolver(db)
	entry, err := resolver.ResolveRole(ctx, "user-1", org.ID)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", entry.ProfileID)
	assert.Equal(t, models.RoleCoach, entry.Role)

	_, err = resolver.ResolveRole(ctx, "user-1", "org-2")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
