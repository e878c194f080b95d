// ===============================
// internal/handlers/websocket.go - Realtime notifications socket
// ===============================

package handlers

import (
	"log"
	"net/http"

	ws "github.com/Randomizando3/DramaBoxV2/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts any origin when allowedOrigins is empty or
// contains "*"
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// native apps send no Origin
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Connect runs behind FirebaseAuth, the token may come as ?token= on upgrade
func (h *WebSocketHandler) Connect(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed for %s: %v", userID, err)
		return
	}

	h.hub.Attach(userID, conn)
}
