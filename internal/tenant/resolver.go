package tenant

import (
	"context"
	"errors"
	"fmt"

	"courtline/internal/database"
	"courtline/internal/domain"
	"courtline/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrUnauthenticated means no valid identity was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNoActiveOrganization means the identity has no organization selected
	// or joined; the presentation layer redirects to organization selection.
	ErrNoActiveOrganization = errors.New("no active organization")
)

// Identity is the authenticated caller as supplied by the external identity
// provider. The engine never verifies credentials itself.
type Identity struct {
	ID             string
	OrganizationID string
}

// Resolver turns an Identity into a Caller: the organization the request
// operates in plus the caller's profile and role. Lookups go through the
// role cache; a cached entry may be stale up to the cache TTL.
type Resolver struct {
	roles  domain.RoleResolver
	cache  domain.RoleCache
	logger *zerolog.Logger
}

func NewResolver(roles domain.RoleResolver, cache domain.RoleCache, logger *zerolog.Logger) *Resolver {
	return &Resolver{roles: roles, cache: cache, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, identity Identity) (*models.Caller, error) {
	if identity.ID == "" {
		return nil, ErrUnauthenticated
	}
	if identity.OrganizationID == "" {
		return nil, ErrNoActiveOrganization
	}

	if r.cache != nil {
		entry, err := r.cache.Get(ctx, identity.ID, identity.OrganizationID)
		if err != nil {
			// Cache trouble degrades to a direct lookup.
			r.logger.Warn().Err(err).Str("identity_id", identity.ID).Msg("role cache read failed")
		} else if entry != nil {
			return &models.Caller{
				OrganizationID: identity.OrganizationID,
				ProfileID:      entry.ProfileID,
				Role:           entry.Role,
			}, nil
		}
	}

	entry, err := r.roles.ResolveRole(ctx, identity.ID, identity.OrganizationID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoActiveOrganization
		}
		return nil, fmt.Errorf("failed to resolve role: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, identity.ID, identity.OrganizationID, entry); err != nil {
			r.logger.Warn().Err(err).Str("identity_id", identity.ID).Msg("role cache write failed")
		}
	}

	return &models.Caller{
		OrganizationID: identity.OrganizationID,
		ProfileID:      entry.ProfileID,
		Role:           entry.Role,
	}, nil
}

// Invalidate drops the cached role for an identity, for use after role or
// membership changes.
func (r *Resolver) Invalidate(ctx context.Context, identity Identity) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx, identity.ID, identity.OrganizationID)
}

// StoreRoleResolver resolves roles against the profile store.
type StoreRoleResolver struct {
	store domain.Store
}

func NewStoreRoleResolver(store domain.Store) *StoreRoleResolver {
	return &StoreRoleResolver{store: store}
}

func (s *StoreRoleResolver) ResolveRole(ctx context.Context, identityID, orgID string) (*models.RoleEntry, error) {
	p, err := s.store.GetProfileByIdentity(ctx, orgID, identityID)
	if err != nil {
		return nil, err
	}
	return &models.RoleEntry{ProfileID: p.ID, Role: p.Role}, nil
}
