package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub fans events out to widgets. Clients are grouped by the connection they
// authenticated for; one website connection can have many open widgets.
type Hub struct {
	clients     map[*Client]bool
	connections map[uuid.UUID]map[*Client]bool
	broadcast   chan Event
	register    chan *Client
	unregister  chan *Client
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		connections: make(map[uuid.UUID]map[*Client]bool),
		broadcast:   make(chan Event, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastToConnection(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.connections[client.connectionID] == nil {
		h.connections[client.connectionID] = make(map[*Client]bool)
	}
	h.connections[client.connectionID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		delete(h.connections[client.connectionID], client)

		if len(h.connections[client.connectionID]) == 0 {
			delete(h.connections, client.connectionID)
		}

		close(client.send)
	}
}

// broadcastToConnection takes the write lock because saturated clients are
// evicted inline.
func (h *Hub) broadcastToConnection(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.connections[event.ConnectionID]
	if clients == nil {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			delete(h.connections[event.ConnectionID], client)
		}
	}
}

// BroadcastToConnection queues an event for every widget open on the given
// connection. Drops the event if the hub is saturated.
func (h *Hub) BroadcastToConnection(connectionID uuid.UUID, eventType EventType, data interface{}) {
	event := Event{
		ConnectionID: connectionID,
		Type:         eventType,
		Data:         data,
		Timestamp:    time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) GetConnectedClients(connectionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections[connectionID])
}
