package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Presence reports how many live sessions a user currently holds, for
// diagnostics.
func (h *Handler) Presence(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.registry.SessionCount(c.Param("user_id"))})
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
