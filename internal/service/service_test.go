package service

import (
	"context"
	"testing"
	"time"

	"courtline/internal/database"
	"courtline/internal/events"
	"courtline/internal/models"
	"courtline/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testEnv wires the services against a real in-memory store, one
// organization and one profile per role.
type testEnv struct {
	db           *database.DB
	availability *Availability
	bookings     *Bookings
	tracker      *Tracker
	profiles     *Profiles
	bus          *events.EventBus

	org     *models.Organization
	admin   *models.Profile
	coach   *models.Profile
	student *models.Profile
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{db: db, bus: events.NewEventBus()}
	env.availability = NewAvailability(db, &logger)
	env.bookings = NewBookings(db, env.availability, env.bus, 0, 0, &logger)
	env.tracker = NewTracker(db, env.bus, &logger)
	env.profiles = NewProfiles(db, repository.NewMemoryRoleCache(time.Minute), &logger)

	ctx := context.Background()
	env.org = &models.Organization{ID: uuid.NewString(), Name: "Riverside Tennis Club", Slug: "riverside"}
	require.NoError(t, db.CreateOrganization(ctx, env.org))

	env.admin = env.seedProfile(t, models.RoleAdmin)
	env.coach = env.seedProfile(t, models.RoleCoach)
	env.student = env.seedProfile(t, models.RoleStudent)
	return env
}

func (e *testEnv) seedProfile(t *testing.T, role string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:             uuid.NewString(),
		IdentityID:     uuid.NewString(),
		OrganizationID: e.org.ID,
		Name:           "Profile " + uuid.NewString()[:8],
		Email:          uuid.NewString()[:8] + "@example.com",
		Role:           role,
	}
	require.NoError(t, e.db.CreateProfile(context.Background(), p))
	return p
}

func (e *testEnv) caller(p *models.Profile) *models.Caller {
	return &models.Caller{OrganizationID: e.org.ID, ProfileID: p.ID, Role: p.Role}
}

// setCoachAvailability gives the coach one window per provided weekday.
func (e *testEnv) setCoachAvailability(t *testing.T, coach *models.Profile, weekday time.Weekday, start, end models.Clock) {
	t.Helper()
	windows := []*models.AvailabilityWindow{{
		ID:      uuid.NewString(),
		Weekday: weekday,
		Start:   start,
		End:     end,
	}}
	require.NoError(t, e.availability.SetAvailability(context.Background(), e.caller(coach), coach.ID, windows))
}

// nextWeekday returns the first future date falling on the given weekday.
func nextWeekday(wd time.Weekday) time.Time {
	d := time.Now().AddDate(0, 0, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func clock(t *testing.T, s string) models.Clock {
	t.Helper()
	c, err := models.ParseClock(s)
	require.NoError(t, err)
	return c
}
