package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListMenu returns the whole menu (public).
func (h *Handler) ListMenu(c *gin.Context) {
	items, err := h.menu.ListMenuItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
