package ws

import (
	"net/http"

	"bursary/config"
	"bursary/internal/auth"
	"bursary/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeAuditFeed upgrades the connection and streams audit events to admin
// clients. The token travels as a query parameter because browser websocket
// clients cannot set headers.
func ServeAuditFeed(cfg *config.JWTConfig, hub *AuditHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		claims, err := auth.ParseToken(cfg, token)
		if err != nil || claims.Role != domain.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin token required"})
			return
		}
		wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &conn{send: make(chan []byte, 256), ws: wsConn}
		hub.register(client)
		defer func() {
			hub.unregister(client)
			wsConn.Close()
		}()
		go func() {
			for msg := range client.send {
				if err := wsConn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()
		// Read loop only to detect close; the feed is one-way.
		for {
			if _, _, err := wsConn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
