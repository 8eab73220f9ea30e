// internal/ws/hub.go
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType identifies a pairing event pushed to a customer's open devices.
type EventType string

const (
	EventDeviceLinked   EventType = "device_linked"
	EventDeviceUnlinked EventType = "device_unlinked"
)

// Event is the JSON payload broadcast to every connected device of a
// customer when its device set changes, so open tabs can refresh their
// device list without polling.
type Event struct {
	Type        EventType `json:"type"`
	CustomerID  string    `json:"customer_id"`
	DeviceID    string    `json:"device_id"`
	DisplayName string    `json:"display_name,omitempty"`
	At          time.Time `json:"at"`
}

// Hub fans pairing events out to connected clients, grouped by customer id.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case ev := <-h.broadcast:
			h.fanout(ev)
		}
	}
}

// Publish queues a pairing event. Never blocks the caller: when the buffer
// is full the event is dropped, clients fall back to refreshing on load.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("pairing event dropped, broadcast buffer full",
			zap.String("customer_id", ev.CustomerID))
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.customerID] == nil {
		h.clients[c.customerID] = make(map[*Client]bool)
	}
	h.clients[c.customerID][c] = true
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.customerID]; ok {
		if conns[c] {
			delete(conns, c)
			close(c.send)
		}
		if len(conns) == 0 {
			delete(h.clients, c.customerID)
		}
	}
}

func (h *Hub) fanout(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal pairing event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ev.CustomerID] {
		select {
		case c.send <- data:
		default:
			// slow consumer, skip rather than stall the hub
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

// ConnectionCount reports connected clients for a customer, used in tests
// and the health surface.
func (h *Hub) ConnectionCount(customerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[customerID])
}
