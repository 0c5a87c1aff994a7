package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bokaap-reservations/models"
	"bokaap-reservations/statemachine"
)

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}

// Health pings the store and reports the notification counters.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	storeStatus := "ok"
	if err := h.store.Ping(ctx); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		storeStatus = err.Error()
	}

	c.JSON(code, gin.H{
		"status":        status,
		"service":       "Bokaap Deli Reservations API",
		"store":         storeStatus,
		"notifications": h.notifier.Stats(),
		"setup":         h.auth.SetupMode(),
	})
}

// StateMachine returns the reservation lifecycle for informational purposes.
func (h *Handler) StateMachine(c *gin.Context) {
	transitions := statemachine.GetAllTransitions()
	info := make([]gin.H, 0, len(transitions))
	for _, t := range transitions {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": "admin"})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"initial_state":   models.StatusPending,
		"terminal_states": statemachine.TerminalStates(),
		"policy":          h.reservations.Policy(),
		"description":     "Bokaap Deli Reservation Lifecycle State Machine",
	})
}
