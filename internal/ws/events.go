package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// EventConnectionStatus tells widgets their channel changed state, so
	// the embedded UI can show an offline banner or resume chatting.
	EventConnectionStatus EventType = "connection.status_changed"
	// EventConversationMessage carries a new agent reply to the widget
	EventConversationMessage EventType = "conversation.message"
)

type Event struct {
	ConnectionID uuid.UUID   `json:"-"`
	Type         EventType   `json:"type"`
	Data         interface{} `json:"data"`
	Timestamp    time.Time   `json:"timestamp"`
}
