package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bokaap-reservations/middleware"
	"bokaap-reservations/service"
)

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSetupClosed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"detail": ...}. Server-side failures are logged and
// answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	switch {
	case status == http.StatusUnauthorized:
		middleware.Unauthorized(c, err.Error())
		return
	case status == http.StatusServiceUnavailable:
		slog.Error("store operation failed", "path", c.FullPath(), "err", err)
		c.JSON(status, gin.H{"detail": service.ErrStoreUnavailable.Error()})
		return
	case status >= 500:
		slog.Error("unhandled error", "path", c.FullPath(), "err", err)
		c.JSON(status, gin.H{"detail": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}
