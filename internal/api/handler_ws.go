package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The service sits behind the platform gateway, which enforces
		// origin policy before traffic reaches it.
		return true
	},
}

// ServeWS upgrades the request to a WebSocket and registers the session
// for live delivery. The session lives until the client closes, the read
// loop errors, or the server shuts down. Authentication happens upstream;
// the gateway forwards the authenticated user id.
func (h *Handler) ServeWS(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	session := h.registry.Connect(userID, conn)
	defer func() {
		h.registry.Disconnect(session)
		conn.Close()
	}()

	// Delivery is one-way; the read loop only detects disconnect.
	conn.SetReadLimit(h.readLimit)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
