package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bokaap-reservations/middleware"
	"bokaap-reservations/service"
)

type TokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// CreateAdminRequest carries the plaintext password in password_hash, which is
// the field name existing clients send. password is accepted as well.
type CreateAdminRequest struct {
	Username     string `json:"username" binding:"required"`
	PasswordHash string `json:"password_hash"`
	Password     string `json:"password"`
}

// Token exchanges form credentials for a bearer token.
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated admin. The password hash is never serialised.
func (h *Handler) Me(c *gin.Context) {
	admin := middleware.CurrentAdmin(c)
	if admin == nil {
		middleware.Unauthorized(c, service.ErrUnauthorized.Error())
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	password := req.PasswordHash
	if password == "" {
		password = req.Password
	}
	if _, err := h.auth.CreateAdmin(c.Request.Context(), req.Username, password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin user created successfully"})
}
