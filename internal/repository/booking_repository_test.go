package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikrrevents/eventsite/internal/model"
)

func sampleBooking(userID string) *model.Booking {
	return &model.Booking{
		UserID:     userID,
		EventTypes: model.StringList{"Wedding", "Reception"},
		Schedule: model.Schedule{
			{Date: "2025-06-01", Time: "18:00"},
			{Date: "2025-06-02", Time: ""},
		},
		Venue:         "Grand Hall",
		AttendeeCount: 150,
		ThemeDetails:  strPtr("Pastel"),
		Budget:        "5-10 lakh",
		Contact:       model.PointOfContact{Name: "Asha", Email: "asha@example.com", Phone: "+91 98765 43210"},
	}
}

func TestBookingRepoCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db, "asha@example.com")
	repo := NewBookingRepo(db)
	ctx := context.Background()

	b := sampleBooking(u.ID)
	require.NoError(t, repo.Create(ctx, b))
	require.NotEmpty(t, b.ID)
	assert.Equal(t, model.BookingPending, b.Status)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.EventTypes, got.EventTypes)
	assert.Equal(t, b.Schedule, got.Schedule)
	assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, got.Schedule.Dates())
	assert.Equal(t, b.Contact, got.Contact)
	assert.Equal(t, "Pastel", *got.ThemeDetails)
	assert.Nil(t, got.OtherEvent)
	require.NotNil(t, got.User)
	assert.Equal(t, "asha@example.com", got.User.Email)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))
}

func TestBookingRepoListOrdering(t *testing.T) {
	db := openTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	repo := NewBookingRepo(db)
	repo.now = tickingClock()
	ctx := context.Background()

	first := sampleBooking(owner.ID)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, sampleBooking(other.ID)))
	second := sampleBooking(owner.ID)
	require.NoError(t, repo.Create(ctx, second))

	own, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, second.ID, own[0].ID)
	assert.Equal(t, first.ID, own[1].ID)
	assert.Nil(t, own[0].User)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, second.ID, all[0].ID)
	for _, b := range all {
		require.NotNil(t, b.User)
		assert.Equal(t, b.UserID, b.User.ID)
	}

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingRepoUpdateStatus(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db, "asha@example.com")
	repo := NewBookingRepo(db)
	repo.now = tickingClock()
	ctx := context.Background()

	b := sampleBooking(u.ID)
	require.NoError(t, repo.Create(ctx, b))

	updated, err := repo.UpdateStatus(ctx, b.ID, model.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, updated.Status)
	assert.True(t, updated.UpdatedAt.After(b.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(b.CreatedAt))
	assert.Equal(t, b.Venue, updated.Venue)
	assert.Equal(t, b.Schedule, updated.Schedule)

	// CANCELLED is not terminal.
	_, err = repo.UpdateStatus(ctx, b.ID, model.BookingCancelled)
	require.NoError(t, err)
	back, err := repo.UpdateStatus(ctx, b.ID, model.BookingPending)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, back.Status)

	_, err = repo.UpdateStatus(ctx, "missing", model.BookingConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingRepoDelete(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db, "asha@example.com")
	repo := NewBookingRepo(db)
	ctx := context.Background()

	b := sampleBooking(u.ID)
	require.NoError(t, repo.Create(ctx, b))

	deleted, err := repo.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.ID)

	_, err = repo.Delete(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
