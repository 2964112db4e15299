package ws

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/converso-hq/converso/internal/domain"
	"github.com/converso-hq/converso/internal/widget"
)

// LocalConnectionID is the locals key the auth middleware stores the
// authenticated connection ID under
const LocalConnectionID = "connection_id"

// Authenticator validates a widget token and resolves its connection
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Connection, *widget.Claims, error)
}

// AuthMiddleware authenticates the websocket handshake with a widget token
// passed as a query parameter. Browsers cannot set headers on websocket
// upgrades, so the query string is the only place the token can travel.
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return domain.ErrInvalidWidgetToken
		}

		conn, _, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			return err
		}

		c.Locals(LocalConnectionID, conn.ID)
		return c.Next()
	}
}

func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		connIDValue := c.Locals(LocalConnectionID)
		if connIDValue == nil {
			_ = c.Close()
			return
		}

		connectionID, ok := connIDValue.(uuid.UUID)
		if !ok {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:          hub,
			conn:         c,
			connectionID: connectionID,
			send:         make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
