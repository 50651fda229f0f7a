package database

import (
	"context"
	"testing"

	"courtline/internal/domain"
	"courtline/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAttendanceIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	org := seedOrg(t, db)
	coach := seedProfile(t, db, org.ID, models.RoleCoach)
	student := seedProfile(t, db, org.ID, models.RoleStudent)
	b := seedBooking(t, db, org.ID, student.ID, coach.ID, testDate, 10*60, 11*60)

	first := &models.Attendance{
		ID:             uuid.NewString(),
		BookingID:      b.ID,
		OrganizationID: org.ID,
		Status:         models.AttendanceLate,
		Notes:          "arrived 10 past",
	}
	require.NoError(t, db.UpsertAttendance(ctx, first))

	// Recording again updates in place; no second row appears.
	second := &models.Attendance{
		ID:             uuid.NewString(),
		BookingID:      b.ID,
		OrganizationID: org.ID,
		Status:         models.AttendancePresent,
	}
	require.NoError(t, db.UpsertAttendance(ctx, second))

	// The surviving row keeps the original id.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.AttendancePresent, second.Status)

	all, err := db.ListAttendance(ctx, org.ID, domain.AttendanceFilter{BookingID: b.ID})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.AttendancePresent, all[0].Status)
	assert.Equal(t, "", all[0].Notes)
}

func TestListAttendanceFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	org := seedOrg(t, db)
	coach := seedProfile(t, db, org.ID, models.RoleCoach)
	student := seedProfile(t, db, org.ID, models.RoleStudent)

	early := seedBooking(t, db, org.ID, student.ID, coach.ID, testDate, 9*60, 10*60)
	late := seedBooking(t, db, org.ID, student.ID, coach.ID, testDate.AddDate(0, 0, 14), 9*60, 10*60)

	require.NoError(t, db.UpsertAttendance(ctx, &models.Attendance{
		ID: uuid.NewString(), BookingID: early.ID, OrganizationID: org.ID, Status: models.AttendancePresent,
	}))
	require.NoError(t, db.UpsertAttendance(ctx, &models.Attendance{
		ID: uuid.NewString(), BookingID: late.ID, OrganizationID: org.ID, Status: models.AttendanceAbsent,
	}))

	byStatus, err := db.ListAttendance(ctx, org.ID, domain.AttendanceFilter{Status: models.AttendanceAbsent})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, late.ID, byStatus[0].BookingID)

	byRange, err := db.ListAttendance(ctx, org.ID, domain.AttendanceFilter{
		From: testDate, To: testDate.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	require.Len(t, byRange, 1)
	assert.Equal(t, early.ID, byRange[0].BookingID)

	all, err := db.ListAttendance(ctx, org.ID, domain.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
