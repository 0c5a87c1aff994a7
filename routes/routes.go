package routes

import (
	"github.com/gin-gonic/gin"

	"bokaap-reservations/handlers"
	"bokaap-reservations/middleware"
	"bokaap-reservations/service"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	// ── Public routes ──────────────────────────────────────────────
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/state-machine", h.StateMachine)

	r.POST("/token", h.Token)
	r.GET("/menu", h.ListMenu)
	r.POST("/reservations", h.CreateReservation)

	// Bootstrap is unauthenticated; the service enforces the setup mode.
	if h.Auth().SetupMode() != service.SetupOff {
		r.POST("/create_admin", h.CreateAdmin)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/")
	admin.Use(middleware.AuthRequired(h.Auth()))
	{
		admin.GET("/users/me", h.Me)
		admin.GET("/users/me/", h.Me)

		admin.GET("/reservations", h.ListReservations)
		admin.GET("/reservations/:id", h.GetReservation)
		admin.PATCH("/reservations/:id/status", h.UpdateReservationStatus)
	}
}
