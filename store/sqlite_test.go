package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokaap-reservations/models"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "reservations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSQLiteStore_AdminUsernameIsUnique(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	first := &models.AdminUser{Username: "chef", PasswordHash: "h1", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateAdmin(ctx, first))
	assert.NotEmpty(t, first.ID)

	err := s.CreateAdmin(ctx, &models.AdminUser{Username: "chef", PasswordHash: "h2", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := s.AdminByUsername(ctx, "chef")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "h1", got.PasswordHash)

	count, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = s.AdminByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_CreateFirstAdminOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateFirstAdmin(ctx, &models.AdminUser{
				Username:     fmt.Sprintf("admin-%d", i),
				PasswordHash: "h",
				CreatedAt:    time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()

	var created int
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrSetupDone)
	}
	assert.Equal(t, 1, created)

	count, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSQLiteStore_ReservationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	r := &models.Reservation{
		Name: "Alice", Email: "a@x.com", Phone: "555",
		Date: "2024-01-01", Time: "18:00", Guests: 2, TableNumber: 5,
		Status:           models.StatusPending,
		ReservationItems: []models.ReservationItem{{MenuItemID: "bobotie", Quantity: 2}},
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, s.CreateReservation(ctx, r))
	require.NotEmpty(t, r.ID)

	got, err := s.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, []models.ReservationItem{{MenuItemID: "bobotie", Quantity: 2}}, got.ReservationItems)

	updated, err := s.UpdateReservationStatus(ctx, r.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, r.ID, updated.ID)

	list, err := s.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusConfirmed, list[0].Status)
}

func TestSQLiteStore_UnknownReservation(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	_, err := s.GetReservation(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateReservationStatus(ctx, "does-not-exist", models.StatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListMenuItemsIsCapped(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	empty, err := s.ListMenuItems(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	items := make([]models.MenuItem, 0, PageSize+5)
	for i := 0; i < PageSize+5; i++ {
		items = append(items, models.MenuItem{
			ID:       fmt.Sprintf("item-%d", i),
			Name:     "Koesister",
			Price:    12.5,
			Category: "dessert",
		})
	}
	require.NoError(t, s.db.CreateInBatches(&items, 200).Error)

	got, err := s.ListMenuItems(ctx)
	require.NoError(t, err)
	assert.Len(t, got, PageSize)
}
