// Package store holds the persistence backends for admins, menu items and
// reservations. Every backend hands out fresh copies; nothing returned here is
// shared between calls.
package store

import (
	"context"
	"errors"

	"bokaap-reservations/models"
)

// PageSize caps every list query. There is no cursor.
const PageSize = 1000

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrSetupDone = errors.New("an admin already exists")
)

type AdminStore interface {
	AdminByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	CountAdmins(ctx context.Context) (int64, error)

	// CreateAdmin fails with ErrDuplicate when the username is taken.
	CreateAdmin(ctx context.Context, admin *models.AdminUser) error

	// CreateFirstAdmin creates admin only if no admin exists yet, atomically
	// with respect to concurrent callers. It fails with ErrSetupDone otherwise.
	CreateFirstAdmin(ctx context.Context, admin *models.AdminUser) error
}

type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	ListReservations(ctx context.Context) ([]models.Reservation, error)

	// GetReservation returns ErrNotFound for unknown and malformed ids alike.
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)

	// UpdateReservationStatus sets the status in a single store operation and
	// returns the document as it is after the update.
	UpdateReservationStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error)
}

// Store is what the process opens once at startup.
type Store interface {
	AdminStore
	MenuStore
	ReservationStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
