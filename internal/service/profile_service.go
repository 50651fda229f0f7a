package service

import (
	"context"

	"courtline/internal/domain"
	"courtline/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Profiles manages the people inside the caller's organization. Roles are
// mutated here and therefore every write invalidates the role cache for the
// affected identity.
type Profiles struct {
	store  domain.Store
	cache  domain.RoleCache
	logger *zerolog.Logger
}

func NewProfiles(store domain.Store, cache domain.RoleCache, logger *zerolog.Logger) *Profiles {
	return &Profiles{store: store, cache: cache, logger: logger}
}

// Create adds a profile to the caller's organization. Admin only.
func (s *Profiles) Create(ctx context.Context, caller *models.Caller, p *models.Profile) (*models.Profile, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if p.Role == "" {
		p.Role = models.RoleStudent
	}
	if !models.ValidRole(p.Role) {
		return nil, ErrInvalidStatus
	}

	p.ID = uuid.NewString()
	p.OrganizationID = caller.OrganizationID
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("profile_id", p.ID).
		Str("role", p.Role).
		Msg("profile created")
	return p, nil
}

// Get returns one profile in the caller's organization.
func (s *Profiles) Get(ctx context.Context, caller *models.Caller, profileID string) (*models.Profile, error) {
	return s.store.GetProfile(ctx, caller.OrganizationID, profileID)
}

// List returns every profile in the caller's organization.
func (s *Profiles) List(ctx context.Context, caller *models.Caller) ([]*models.Profile, error) {
	return s.store.ListProfiles(ctx, caller.OrganizationID)
}

// Update rewrites a profile. Admins may edit anyone; other roles only their
// own profile, and never their own role.
func (s *Profiles) Update(ctx context.Context, caller *models.Caller, p *models.Profile) (*models.Profile, error) {
	current, err := s.store.GetProfile(ctx, caller.OrganizationID, p.ID)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() {
		if p.ID != caller.ProfileID || p.Role != current.Role {
			return nil, ErrForbidden
		}
	}
	if !models.ValidRole(p.Role) {
		return nil, ErrInvalidStatus
	}

	p.OrganizationID = caller.OrganizationID
	p.IdentityID = current.IdentityID
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}

	if p.Role != current.Role {
		if err := s.cache.Invalidate(ctx, current.IdentityID, caller.OrganizationID); err != nil {
			s.logger.Warn().Err(err).Str("profile_id", p.ID).Msg("role cache invalidation failed")
		}
	}
	return p, nil
}

// Delete removes a profile with its availability windows, progress records
// and booking history. A profile that still has pending or confirmed
// bookings cannot be deleted. Admin only.
func (s *Profiles) Delete(ctx context.Context, caller *models.Caller, profileID string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	current, err := s.store.GetProfile(ctx, caller.OrganizationID, profileID)
	if err != nil {
		return err
	}

	active, err := s.store.CountActiveBookingsForProfile(ctx, caller.OrganizationID, profileID)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrProfileHasBookings
	}

	if err := s.store.DeleteProfile(ctx, caller.OrganizationID, profileID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, current.IdentityID, caller.OrganizationID); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("role cache invalidation failed")
	}
	s.logger.Info().Str("profile_id", profileID).Msg("profile deleted")
	return nil
}
