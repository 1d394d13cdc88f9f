package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitefeed-notify/internal/store"
)

// ListNotifications returns the recipient's most recent notifications,
// newest first, capped at the history limit.
func (h *Handler) ListNotifications(c *gin.Context) {
	userID := c.Param("user_id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	records, err := h.store.NotificationsForUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": records})
}

// UnreadCount returns the recipient's unread badge count.
func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.store.UnreadCount(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead flips one notification's read flag for its recipient.
func (h *Handler) MarkRead(c *gin.Context) {
	err := h.store.MarkRead(c.Request.Context(), c.Param("user_id"), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllRead flips every unread notification for the recipient.
func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.store.MarkAllRead(c.Request.Context(), c.Param("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}
