package repository

import (
	"context"
	"sync/atomic"
	"time"

	"courtline/internal/domain"
	"courtline/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing the
// primary again after it went down.
const recoveryInterval = time.Minute

// FailoverRoleCache serves from the primary cache and falls back to the
// secondary when the primary errors, probing the primary periodically.
type FailoverRoleCache struct {
	primary   domain.RoleCache
	fallback  domain.RoleCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverRoleCache(primary, fallback domain.RoleCache, logger *zerolog.Logger) *FailoverRoleCache {
	return &FailoverRoleCache{primary: primary, fallback: fallback, logger: logger}
}

func (f *FailoverRoleCache) markDown(err error) {
	if f.isDown.CompareAndSwap(false, true) {
		f.logger.Error().Err(err).Msg("primary role cache failed, falling back to memory")
	}
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverRoleCache) shouldProbe() bool {
	return time.Since(time.Unix(0, f.lastCheck.Load())) > recoveryInterval
}

func (f *FailoverRoleCache) Get(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error) {
	if !f.isDown.Load() || f.shouldProbe() {
		entry, err := f.primary.Get(ctx, identityID, orgID)
		if err == nil {
			f.isDown.Store(false)
			return entry, nil
		}
		f.markDown(err)
	}
	return f.fallback.Get(ctx, identityID, orgID)
}

func (f *FailoverRoleCache) Set(ctx context.Context, identityID, orgID string, entry *models.RoleEntry) error {
	if !f.isDown.Load() || f.shouldProbe() {
		err := f.primary.Set(ctx, identityID, orgID, entry)
		if err == nil {
			f.isDown.Store(false)
			return f.fallback.Set(ctx, identityID, orgID, entry)
		}
		f.markDown(err)
	}
	return f.fallback.Set(ctx, identityID, orgID, entry)
}

func (f *FailoverRoleCache) Invalidate(ctx context.Context, identityID, orgID string) error {
	// Invalidation must reach both sides so a recovered primary cannot
	// revive a dropped entry.
	perr := f.primary.Invalidate(ctx, identityID, orgID)
	ferr := f.fallback.Invalidate(ctx, identityID, orgID)
	if perr != nil {
		f.markDown(perr)
	}
	if ferr != nil {
		return ferr
	}
	return nil
}
