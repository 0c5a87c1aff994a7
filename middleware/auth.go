package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bokaap-reservations/models"
	"bokaap-reservations/service"
)

const adminKey = "admin"

// Authenticator resolves a bearer token to the admin it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AdminUser, error)
}

// AuthRequired validates the bearer token and injects the admin into the context.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			Unauthorized(c, service.ErrUnauthorized.Error())
			return
		}

		admin, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, service.ErrStoreUnavailable) {
				slog.Error("admin lookup failed", "err", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": service.ErrStoreUnavailable.Error()})
				return
			}
			Unauthorized(c, unauthorizedDetail(err))
			return
		}
		c.Set(adminKey, admin)
		c.Next()
	}
}

// Unauthorized aborts with 401 and the bearer challenge header.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func unauthorizedDetail(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return service.ErrTokenExpired.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return service.ErrUnauthorized.Error()
	default:
		return service.ErrInvalidToken.Error()
	}
}

// CurrentAdmin extracts the authenticated admin from context.
func CurrentAdmin(c *gin.Context) *models.AdminUser {
	val, ok := c.Get(adminKey)
	if !ok {
		return nil
	}
	admin, _ := val.(*models.AdminUser)
	return admin
}
