package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtline/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyCache struct {
	inner *MemoryRoleCache
	fail  bool
}

func (f *flakyCache) Get(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error) {
	if f.fail {
		return nil, errors.New("primary down")
	}
	return f.inner.Get(ctx, identityID, orgID)
}

func (f *flakyCache) Set(ctx context.Context, identityID, orgID string, entry *models.RoleEntry) error {
	if f.fail {
		return errors.New("primary down")
	}
	return f.inner.Set(ctx, identityID, orgID, entry)
}

func (f *flakyCache) Invalidate(ctx context.Context, identityID, orgID string) error {
	if f.fail {
		return errors.New("primary down")
	}
	return f.inner.Invalidate(ctx, identityID, orgID)
}

func TestFailoverRoleCache(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("UsesPrimaryWhenHealthy", func(t *testing.T) {
		primary := &flakyCache{inner: NewMemoryRoleCache(time.Minute)}
		fallback := NewMemoryRoleCache(time.Minute)
		cache := NewFailoverRoleCache(primary, fallback, &logger)

		entry := &models.RoleEntry{ProfileID: "p-1", Role: models.RoleCoach}
		require.NoError(t, cache.Set(ctx, "identity-1", "org-1", entry))

		got, err := cache.Get(ctx, "identity-1", "org-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.RoleCoach, got.Role)
	})

	t.Run("FallsBackWhenPrimaryFails", func(t *testing.T) {
		primary := &flakyCache{inner: NewMemoryRoleCache(time.Minute), fail: true}
		fallback := NewMemoryRoleCache(time.Minute)
		cache := NewFailoverRoleCache(primary, fallback, &logger)

		entry := &models.RoleEntry{ProfileID: "p-2", Role: models.RoleAdmin}
		require.NoError(t, cache.Set(ctx, "identity-2", "org-1", entry))

		got, err := cache.Get(ctx, "identity-2", "org-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.RoleAdmin, got.Role)
	})

	t.Run("InvalidateReachesFallback", func(t *testing.T) {
		primary := &flakyCache{inner: NewMemoryRoleCache(time.Minute), fail: true}
		fallback := NewMemoryRoleCache(time.Minute)
		cache := NewFailoverRoleCache(primary, fallback, &logger)

		entry := &models.RoleEntry{ProfileID: "p-3", Role: models.RoleStudent}
		require.NoError(t, cache.Set(ctx, "identity-3", "org-1", entry))
		require.NoError(t, cache.Invalidate(ctx, "identity-3", "org-1"))

		got, err := cache.Get(ctx, "identity-3", "org-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
