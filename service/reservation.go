package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bokaap-reservations/models"
	"bokaap-reservations/notify"
	"bokaap-reservations/statemachine"
	"bokaap-reservations/store"
)

// Notifier schedules a reservation email. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, event string, r models.Reservation)
}

// ReservationInput is what a guest submits. Id, status and created_at are not
// accepted from clients.
type ReservationInput struct {
	Name             string                 `json:"name" validate:"required"`
	Email            string                 `json:"email" validate:"required"`
	Phone            string                 `json:"phone" validate:"required"`
	Date             string                 `json:"date" validate:"required"`
	Time             string                 `json:"time" validate:"required"`
	Guests           int                    `json:"guests" validate:"required,min=1"`
	TableNumber      int                    `json:"table_number" validate:"required,min=1"`
	ReservationItems []ReservationItemInput `json:"reservation_items" validate:"omitempty,dive"`
}

type ReservationItemInput struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

type ReservationService struct {
	reservations store.ReservationStore
	notifier     Notifier
	policy       statemachine.Policy
	now          func() time.Time
}

func NewReservationService(reservations store.ReservationStore, notifier Notifier, policy statemachine.Policy) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		notifier:     notifier,
		policy:       policy,
		now:          time.Now,
	}
}

func (s *ReservationService) Policy() statemachine.Policy { return s.policy }

// Create stores a new pending reservation and schedules the "new" email.
func (s *ReservationService) Create(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	items := make([]models.ReservationItem, 0, len(in.ReservationItems))
	for _, it := range in.ReservationItems {
		items = append(items, models.ReservationItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}

	r := &models.Reservation{
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		Date:             in.Date,
		Time:             in.Time,
		Guests:           in.Guests,
		TableNumber:      in.TableNumber,
		Status:           models.StatusPending,
		ReservationItems: items,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.reservations.CreateReservation(ctx, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.notifier.Notify(ctx, notify.EventNew, *r)
	return r, nil
}

func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	reservations, err := s.reservations.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	return reservations, nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return r, nil
}

// UpdateStatus writes the new status and schedules the email keyed by it. How
// much of the state machine is enforced depends on the configured policy.
func (s *ReservationService) UpdateStatus(ctx context.Context, id, status string) (*models.Reservation, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: status not provided", ErrInvalidInput)
	}
	next := models.ReservationStatus(status)

	if s.policy == statemachine.PolicyStrict {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := statemachine.CanTransition(s.policy, current.Status, next); err != nil {
			return nil, translateTransitionError(err)
		}
	} else if err := statemachine.CheckStatus(s.policy, next); err != nil {
		return nil, translateTransitionError(err)
	}

	updated, err := s.reservations.UpdateReservationStatus(ctx, id, next)
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.notifier.Notify(ctx, status, *updated)
	return updated, nil
}

func translateStoreError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func translateTransitionError(err error) error {
	if errors.Is(err, statemachine.ErrInvalidTransition) {
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
