package repository

import (
	"context"
	"sync"
	"time"

	"courtline/internal/models"
)

// MemoryRoleCache is the in-process fallback cache with the same TTL
// semantics as the redis implementation.
type MemoryRoleCache struct {
	entries sync.Map
	ttl     time.Duration
}

type cachedEntry struct {
	entry     models.RoleEntry
	expiresAt time.Time
}

func NewMemoryRoleCache(ttl time.Duration) *MemoryRoleCache {
	return &MemoryRoleCache{ttl: ttl}
}

func (m *MemoryRoleCache) Get(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error) {
	val, ok := m.entries.Load(roleKey(identityID, orgID))
	if !ok {
		return nil, nil
	}
	cached := val.(cachedEntry)
	if time.Now().After(cached.expiresAt) {
		m.entries.Delete(roleKey(identityID, orgID))
		return nil, nil
	}
	entry := cached.entry
	return &entry, nil
}

func (m *MemoryRoleCache) Set(ctx context.Context, identityID, orgID string, entry *models.RoleEntry) error {
	m.entries.Store(roleKey(identityID, orgID), cachedEntry{
		entry:     *entry,
		expiresAt: time.Now().Add(m.ttl),
	})
	return nil
}

func (m *MemoryRoleCache) Invalidate(ctx context.Context, identityID, orgID string) error {
	m.entries.Delete(roleKey(identityID, orgID))
	return nil
}
