package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bitefeed-notify/internal/model"
	"bitefeed-notify/internal/notification"
)

type notifyRequest struct {
	Type        string `json:"type" binding:"required"`
	ActorID     string `json:"actor_id" binding:"required"`
	RecipientID string `json:"recipient_id" binding:"required"`
	ObjectID    string `json:"object_id"`
	Message     string `json:"message"`
	SendPush    *bool  `json:"send_push"` // defaults to true when omitted
}

// Notify is the fan-out entry point used by the platform's other services.
// Only a persistence fault fails the call; delivery is best-effort.
func (h *Handler) Notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sendPush := true
	if req.SendPush != nil {
		sendPush = *req.SendPush
	}

	id, err := h.notifier.Notify(c.Request.Context(), notification.Event{
		Type:        model.EventType(req.Type),
		ActorID:     req.ActorID,
		RecipientID: req.RecipientID,
		ObjectID:    req.ObjectID,
		Message:     req.Message,
		SendPush:    sendPush,
	})
	if err != nil {
		if errors.Is(err, notification.ErrValidation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist notification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notification_id": id})
}
