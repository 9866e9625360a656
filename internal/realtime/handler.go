package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"loveslices-server/internal/infrastructure/auth"
)

const helloTimeout = 10 * time.Second

// helloFrame is the first frame a client sends after upgrading. It binds the
// connection to a user; with auth enabled it must match the token subject.
type helloFrame struct {
	UserID string `json:"user_id"`
}

// Handler upgrades HTTP requests into hub channels.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler builds the channel handler.
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeChannel handles GET /v1/channel.
func (h *Handler) ServeChannel(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return
	}

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	var hello helloFrame
	if err := conn.ReadJSON(&hello); err != nil || hello.UserID == "" {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected hello frame"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	if hello.UserID != identity.ID {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "hello user mismatch"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	client := h.hub.register(identity.ID, conn)
	go client.writePump(h.hub)
	go client.readPump(h.hub)
}
