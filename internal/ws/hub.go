package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/nees-commerce/admin-gateway/internal/service"
)

// Event is a WebSocket message broadcast to connected dashboards.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of connected dashboard clients and fans
// events out to all of them. There is a single feed; every admin sees
// every order event.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and drop it
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for every connected client.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- event
}

// statusPayload is the wire shape of an order.status_changed event.
type statusPayload struct {
	OrderID    string `json:"orderId"`
	Invoice    string `json:"invoice,omitempty"`
	From       string `json:"from"`
	To         string `json:"to"`
	TrackingID string `json:"trackingId,omitempty"`
	Courier    string `json:"courierCompany,omitempty"`
	ActorName  string `json:"actorName,omitempty"`
}

// NotifyStatusChange implements service.Notifier, pushing each applied
// transition to connected dashboards.
func (h *Hub) NotifyStatusChange(change service.StatusChange) {
	payload, err := json.Marshal(statusPayload{
		OrderID:    change.OrderID,
		Invoice:    change.Invoice,
		From:       string(change.From),
		To:         string(change.To),
		TrackingID: change.TrackingID,
		Courier:    change.Courier,
		ActorName:  change.ActorName,
	})
	if err != nil {
		log.Printf("ERROR: marshal status event: %v", err)
		return
	}
	h.Broadcast(Event{Type: "order.status_changed", Payload: payload})
}
