// Package websocket mirrors every prompt sent to an operator onto their open websocket connections.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"order-card-bot/internal/conversation"
	"order-card-bot/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	hubModule = "WEBSOCKET_HUB"

	// clusterChannel carries prompts between bot instances when Redis is enabled.
	clusterChannel = "order_card_bot:prompts"
)

type Frame struct {
	Type   string              `json:"type"`
	Prompt conversation.Prompt `json:"prompt"`
}

type clusterMessage struct {
	OperatorID int64           `json:"operator_id"`
	Origin     string          `json:"origin"`
	Message    json.RawMessage `json:"message"`
}

type Hub struct {
	// operator id -> open connections (several devices may watch the same operator)
	clients map[int64][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	origin string

	logger logger.ILogger
}

// NewHub builds a hub. rdb may be nil for a single instance.
func NewHub(rdb *redis.Client, origin string, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[int64][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		origin:     origin,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OperatorID] = append(h.clients[client.OperatorID], client)
			h.mu.Unlock()
			h.logger.Info(hubModule, "Client registered", map[string]interface{}{"operator_id": client.OperatorID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.OperatorID]
	for i, c := range clients {
		if c == client {
			h.clients[client.OperatorID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.OperatorID]) == 0 {
		delete(h.clients, client.OperatorID)
	}
}

// Connected reports how many connections watch operatorID on this instance.
func (h *Hub) Connected(operatorID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[operatorID])
}

// Send delivers a prompt to local connections and, when clustered, to the other instances.
func (h *Hub) Send(ctx context.Context, operatorID int64, prompt conversation.Prompt) {
	data, err := json.Marshal(Frame{Type: "prompt", Prompt: prompt})
	if err != nil {
		return
	}

	h.deliver(operatorID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{OperatorID: operatorID, Origin: h.origin, Message: data})
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn(hubModule, "Failed to publish prompt to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliver(operatorID int64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[operatorID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn(hubModule, "Client send buffer full, dropping prompt", map[string]interface{}{"operator_id": operatorID})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn(hubModule, "Dropping malformed cluster message", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.origin {
			continue
		}
		h.deliver(payload.OperatorID, payload.Message)
	}
}
