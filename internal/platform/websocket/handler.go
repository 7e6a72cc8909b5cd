package websocket

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/platform/auth"
)

// UserLeft is sent to the rest of a call room when a participant drops.
type UserLeft struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// Handler upgrades HTTP requests to WebSocket connections.
type Handler struct {
	hub      *Hub
	upgrader gorillawebsocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler builds a handler accepting connections from allowedOrigins.
// An empty list or "*" accepts any origin.
func NewHandler(hub *Hub, logger zerolog.Logger, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		return set[origin]
	}
}

// RegisterRoutes mounts the endpoints on a group rooted at /ws. A
// notification stream is only open to its owner and admins.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/call/:room_id/:user_id", h.HandleCall)
	g.GET("/notifications/:user_id", h.HandleNotifications, auth.RequireSelfOrRole("user_id", auth.RoleAdmin))
}

// HandleCall joins a call room. Every text frame a participant sends is
// relayed unchanged to the other participants.
func (h *Handler) HandleCall(c echo.Context) error {
	roomID, userID := c.Param("room_id"), c.Param("user_id")
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	topic := RoomTopic(roomID)
	client := NewClient(uuid.New().String(), userID, topic)
	client.conn = ws
	h.hub.Register(client)
	h.logger.Info().
		Str("room_id", roomID).
		Str("user_id", userID).
		Int("room_size", h.hub.TopicCount(topic)).
		Msg("call participant joined")

	go h.writePump(client)
	go h.readPump(client, func(msg []byte) {
		h.hub.Broadcast(topic, msg, client)
	}, func() {
		if _, err := h.hub.BroadcastJSON(topic, UserLeft{Type: "user-left", UserID: userID}, nil); err != nil {
			h.logger.Error().Err(err).Msg("announce user-left")
		}
		h.logger.Info().
			Str("room_id", roomID).
			Str("user_id", userID).
			Int("room_size", h.hub.TopicCount(topic)).
			Msg("call participant left")
	})
	return nil
}

// HandleNotifications subscribes the connection to the user's
// notification stream. Inbound frames are ignored.
func (h *Handler) HandleNotifications(c echo.Context) error {
	userID := c.Param("user_id")
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(uuid.New().String(), userID, UserTopic(userID))
	client.conn = ws
	h.hub.Register(client)
	h.logger.Debug().
		Str("user_id", userID).
		Int("user_connections", h.hub.TopicCount(UserTopic(userID))).
		Int("clients", h.hub.ClientCount()).
		Msg("notification stream opened")

	go h.writePump(client)
	go h.readPump(client, nil, nil)
	return nil
}

// readPump reads until the connection fails, then unregisters the client
// and runs onClose.
func (h *Handler) readPump(client *Client, onMessage func([]byte), onClose func()) {
	defer func() {
		h.hub.Unregister(client)
		client.conn.Close()
		if onClose != nil {
			onClose()
		}
	}()

	for {
		_, msg, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		if onMessage != nil {
			onMessage(msg)
		}
	}
}

// writePump drains the client's Send queue onto the connection.
func (h *Handler) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			return
		}
	}
}
