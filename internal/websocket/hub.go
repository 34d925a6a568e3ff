package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/reciperescue/internal/model"
)

// Hub maintains the active WebSocket clients grouped by kitchen and fans
// events out to the clients of one kitchen.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.kitchenID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.kitchenID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.kitchenID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.kitchenID)
		}
	}
	h.mu.Unlock()
}

// Publish sends an event to every client of the given kitchen.
func (h *Hub) Publish(kitchenID string, ev model.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[kitchenID] {
		select {
		case c.send <- data:
		default:
			// Buffer full, drop rather than block.
		}
	}
}

// CloseKitchen disconnects every client of a kitchen, sending reason in
// the close frame. It does not wait for the peers to answer.
func (h *Hub) CloseKitchen(kitchenID, reason string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[kitchenID]))
	for c := range h.clients[kitchenID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		go c.close(reason)
	}
	if len(clients) > 0 {
		h.logger.Info("kitchen connections closed", "kitchen", kitchenID, "count", len(clients), "reason", reason)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// KitchenClientCount returns the number of clients watching one kitchen.
func (h *Hub) KitchenClientCount(kitchenID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[kitchenID])
}
