package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub tracks the live connections of every user.
type Hub struct {
	clients     map[*Client]bool
	userClients map[string][]*Client
	Register    chan *Client
	unregister  chan *Client
	mu          sync.RWMutex
	logger      *zap.Logger
	now         func() time.Time
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger.Named("ws_hub"),
		now:         time.Now,
	}
}

// Run serves registrations until ctx ends, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[*Client]bool)
			h.userClients = make(map[string][]*Client)
			h.mu.Unlock()
			return
		case client := <-h.Register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	h.logger.Debug("client registered", zap.String("user", client.UserID))
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	clients := h.userClients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.userClients[client.UserID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
	h.logger.Debug("client unregistered", zap.String("user", client.UserID))
}

// Connections is the number of live connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// SendToUser pushes an envelope to every connection of userID and returns
// how many received it. A connection whose buffer is full is skipped.
func (h *Hub) SendToUser(userID, messageType string, payload interface{}) (int, error) {
	raw, err := json.Marshal(Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: h.now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s envelope: %w", messageType, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- raw:
			delivered++
		default:
			h.logger.Warn("websocket buffer full, frame dropped", zap.String("user", userID), zap.String("type", messageType))
		}
	}
	return delivered, nil
}
