package database

import (
	"context"
	"testing"

	"courtline/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	org := seedOrg(t, db)
	p := seedProfile(t, db, org.ID, models.RoleStudent)

	r := &models.ProgressRecord{
		ID:             uuid.NewString(),
		ProfileID:      p.ID,
		OrganizationID: org.ID,
		Date:           testDate,
		Notes:          "backhand much improved",
	}
	require.NoError(t, db.CreateProgress(ctx, r))

	got, err := db.GetProgress(ctx, org.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Notes, got.Notes)
	assert.Equal(t, models.DateOnly(testDate), models.DateOnly(got.Date))

	require.NoError(t, db.DeleteProgress(ctx, org.ID, r.ID))
	_, err = db.GetProgress(ctx, org.ID, r.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListProgressOrderAndRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	org := seedOrg(t, db)
	p := seedProfile(t, db, org.ID, models.RoleStudent)

	for _, days := range []int{0, 7, 14} {
		require.NoError(t, db.CreateProgress(ctx, &models.ProgressRecord{
			ID:             uuid.NewString(),
			ProfileID:      p.ID,
			OrganizationID: org.ID,
			Date:           testDate.AddDate(0, 0, days),
			Notes:          "week note",
		}))
	}

	all, err := db.ListProgress(ctx, org.ID, p.ID, testDate, testDate.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Date descending.
	assert.True(t, all[0].Date.After(all[1].Date))
	assert.True(t, all[1].Date.After(all[2].Date))

	window, err := db.ListProgress(ctx, org.ID, p.ID, testDate.AddDate(0, 0, 1), testDate.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Len(t, window, 1)
}

func TestProgressCrossTenantInvisible(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgA := seedOrg(t, db)
	orgB := seedOrg(t, db)
	p := seedProfile(t, db, orgA.ID, models.RoleStudent)

	r := &models.ProgressRecord{
		ID:             uuid.NewString(),
		ProfileID:      p.ID,
		OrganizationID: orgA.ID,
		Date:           testDate,
		Notes:          "note",
	}
	require.NoError(t, db.CreateProgress(ctx, r))

	_, err := db.GetProgress(ctx, orgB.ID, r.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, db.DeleteProgress(ctx, orgB.ID, r.ID), ErrNotFound)
}
