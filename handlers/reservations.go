package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bokaap-reservations/service"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateReservation is public; guests book without an account.
func (h *Handler) CreateReservation(c *gin.Context) {
	var in service.ReservationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	r, err := h.reservations.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) ListReservations(c *gin.Context) {
	reservations, err := h.reservations.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h *Handler) GetReservation(c *gin.Context) {
	r, err := h.reservations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// UpdateReservationStatus applies an admin status change.
func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	r, err := h.reservations.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
