// Package handlers holds the gin handlers for the reservation API. Handlers only
// bind input, call a service and translate errors; they hold no state of their own.
package handlers

import (
	"context"

	"bokaap-reservations/notify"
	"bokaap-reservations/service"
)

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource exposes the notification counters.
type StatsSource interface {
	Stats() notify.Stats
}

type Handler struct {
	auth         *service.AuthService
	menu         *service.MenuService
	reservations *service.ReservationService
	store        Pinger
	notifier     StatsSource
}

func New(auth *service.AuthService, menu *service.MenuService, reservations *service.ReservationService, store Pinger, notifier StatsSource) *Handler {
	return &Handler{
		auth:         auth,
		menu:         menu,
		reservations: reservations,
		store:        store,
		notifier:     notifier,
	}
}

// Auth is the authenticator the route guard uses.
func (h *Handler) Auth() *service.AuthService { return h.auth }
