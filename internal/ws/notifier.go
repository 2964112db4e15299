package ws

import (
	"context"

	"github.com/converso-hq/converso/internal/domain"
)

// StatusNotifier pushes connection status changes to open widgets. It
// satisfies the same dispatcher contract the email notifier does, so status
// changes fan out to both without the service layer knowing either exists.
type StatusNotifier struct {
	hub *Hub
}

func NewStatusNotifier(hub *Hub) *StatusNotifier {
	return &StatusNotifier{hub: hub}
}

func (n *StatusNotifier) ConnectionStatusChanged(_ context.Context, _ *domain.Team, conn *domain.Connection, oldStatus string) error {
	n.hub.BroadcastToConnection(conn.ID, EventConnectionStatus, map[string]string{
		"connection_id": conn.ID.String(),
		"old_status":    oldStatus,
		"new_status":    conn.Status,
	})
	return nil
}
