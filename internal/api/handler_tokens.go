package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerTokenRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"` // optional hint: ios or android
}

// RegisterDeviceToken associates a device push token with a user. The
// store enforces single ownership: a token moving to a new account leaves
// the old one, so a reset or resold device stops leaking notifications.
func (h *Handler) RegisterDeviceToken(c *gin.Context) {
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.RegisterToken(c.Request.Context(), req.UserID, req.Token, req.Platform); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}

type removeTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RemoveDeviceToken deletes a device token, e.g. on logout.
func (h *Handler) RemoveDeviceToken(c *gin.Context) {
	var req removeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.RemoveToken(c.Request.Context(), req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}
