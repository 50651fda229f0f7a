package service

import (
	"context"
	"testing"
	"time"

	"courtline/internal/database"
	"courtline/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfileAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := &models.Profile{
		IdentityID: uuid.NewString(),
		Name:       "New Coach",
		Email:      "new@example.com",
		Role:       models.RoleCoach,
	}
	_, err := env.profiles.Create(ctx, env.caller(env.coach), p)
	assert.ErrorIs(t, err, ErrForbidden)

	created, err := env.profiles.Create(ctx, env.caller(env.admin), p)
	require.NoError(t, err)
	assert.Equal(t, env.org.ID, created.OrganizationID)

	bad := &models.Profile{IdentityID: uuid.NewString(), Name: "X", Email: "x@example.com", Role: "owner"}
	_, err = env.profiles.Create(ctx, env.caller(env.admin), bad)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateProfileRoleRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A student may edit their own contact data.
	edited := *env.student
	edited.Phone = "+15550100"
	updated, err := env.profiles.Update(ctx, env.caller(env.student), &edited)
	require.NoError(t, err)
	assert.Equal(t, "+15550100", updated.Phone)

	// But not promote themselves.
	promoted := *env.student
	promoted.Role = models.RoleAdmin
	_, err = env.profiles.Update(ctx, env.caller(env.student), &promoted)
	assert.ErrorIs(t, err, ErrForbidden)

	// Nor edit someone else.
	other := *env.coach
	other.Phone = "+15550101"
	_, err = env.profiles.Update(ctx, env.caller(env.student), &other)
	assert.ErrorIs(t, err, ErrForbidden)

	// An admin promotes freely.
	promoted = *env.student
	promoted.Role = models.RoleCoach
	updated, err = env.profiles.Update(ctx, env.caller(env.admin), &promoted)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoach, updated.Role)
}

func TestDeleteProfileBlockedByActiveBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.setCoachAvailability(t, env.coach, time.Monday, clock(t, "09:00"), clock(t, "12:00"))
	booking, err := env.bookings.Create(ctx, env.caller(env.coach),
		lessonRequest(t, env, nextWeekday(time.Monday), "09:00", "10:00"))
	require.NoError(t, err)

	err = env.profiles.Delete(ctx, env.caller(env.admin), env.student.ID)
	assert.ErrorIs(t, err, ErrProfileHasBookings)

	// Once the booking reaches a terminal state the profile can go.
	_, err = env.bookings.Transition(ctx, env.caller(env.admin), booking.ID, models.StatusCancelled)
	require.NoError(t, err)
	require.NoError(t, env.profiles.Delete(ctx, env.caller(env.admin), env.student.ID))

	_, err = env.profiles.Get(ctx, env.caller(env.admin), env.student.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteProfilePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.profiles.Delete(ctx, env.caller(env.coach), env.student.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.profiles.Delete(ctx, env.caller(env.admin), uuid.NewString())
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestListProfilesScopedToOrganization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A second organization with its own member.
	other := &models.Organization{ID: uuid.NewString(), Name: "Lakeside Padel", Slug: "lakeside"}
	require.NoError(t, env.db.CreateOrganization(ctx, other))
	foreign := &models.Profile{
		ID:             uuid.NewString(),
		IdentityID:     uuid.NewString(),
		OrganizationID: other.ID,
		Name:           "Foreign",
		Email:          "foreign@example.com",
		Role:           models.RoleCoach,
	}
	require.NoError(t, env.db.CreateProfile(ctx, foreign))

	list, err := env.profiles.List(ctx, env.caller(env.admin))
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = env.profiles.Get(ctx, env.caller(env.admin), foreign.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
