// Package websocket carries the real-time traffic of the server: peer
// signaling relay for video call rooms and per-user notification push.
// Both run on one hub that fans frames out to topic subscribers.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// RoomTopic is the topic a call participant joins.
func RoomTopic(roomID string) string { return "room:" + roomID }

// UserTopic is the topic every connection of one user subscribes to.
func UserTopic(userID string) string { return "user:" + userID }

// Publisher pushes a JSON frame to every connection of a user.
type Publisher interface {
	PublishToUser(ctx context.Context, userID string, frame any) error
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a single WebSocket connection.
type Client struct {
	ID     string
	UserID string
	Topics []string
	Send   chan []byte
	conn   Conn
}

// NewClient builds a client with a buffered send queue.
func NewClient(id, userID string, topics ...string) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Topics: topics,
		Send:   make(chan []byte, sendBuffer),
	}
}

const sendBuffer = 256

// Hub tracks clients and their topic subscriptions. It is safe for
// concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> set of clients
	all     map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and subscribes it to its topics.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, topic := range client.Topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
}

// Unregister removes a client from every topic and closes its Send channel.
// Unregistering twice is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	for _, topic := range client.Topics {
		if subscribers, ok := h.clients[topic]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, topic)
			}
		}
	}
	delete(h.all, client)
	close(client.Send)
}

// Broadcast queues data for every subscriber of topic except the sender,
// which may be nil. It returns the number of clients the frame was queued
// for; slow clients with a full buffer are skipped.
func (h *Hub) Broadcast(topic string, data []byte, sender *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[topic] {
		if client == sender {
			continue
		}
		select {
		case client.Send <- data:
			delivered++
		default:
			h.logger.Warn().Str("client_id", client.ID).Str("topic", topic).Msg("websocket send buffer full, dropping frame")
		}
	}
	return delivered
}

// BroadcastJSON marshals v and broadcasts it to topic.
func (h *Hub) BroadcastJSON(topic string, v any, sender *Client) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal frame: %w", err)
	}
	return h.Broadcast(topic, data, sender), nil
}

// PublishToUser sends frame to every open connection of userID. A user
// with no connection is not an error.
func (h *Hub) PublishToUser(_ context.Context, userID string, frame any) error {
	n, err := h.BroadcastJSON(UserTopic(userID), frame, nil)
	if err != nil {
		return err
	}
	h.logger.Debug().Str("user_id", userID).Int("connections", n).Msg("pushed frame to user")
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients subscribed to topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
