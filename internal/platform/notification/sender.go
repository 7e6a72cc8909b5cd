package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/platform/websocket"
)

// FrameType marks a pushed notification frame.
const FrameType = "GENERAL_NOTIFICATION"

// Payload is a stored notification as pushed to clients.
type Payload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Kind      `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	Link      string    `json:"link"`
}

// Frame is the WebSocket message carrying one notification.
type Frame struct {
	Type         string  `json:"type"`
	Notification Payload `json:"notification"`
}

func GeneralFrame(p Payload) Frame {
	return Frame{Type: FrameType, Notification: p}
}

// Saver persists a rendered notification for a user.
type Saver interface {
	SaveNotification(ctx context.Context, userID string, r Rendered) (Payload, error)
}

// Sender renders, stores and pushes notifications.
type Sender struct {
	templates *TemplateEngine
	store     Saver
	push      websocket.Publisher
	logger    zerolog.Logger
}

// NewSender builds a Sender. push may be nil, in which case notifications
// are only stored.
func NewSender(templates *TemplateEngine, store Saver, push websocket.Publisher, logger zerolog.Logger) *Sender {
	return &Sender{templates: templates, store: store, push: push, logger: logger}
}

// Notify renders templateID with data, stores it for userID and pushes it
// to the user's open connections. A failed push is logged; the stored
// notification is still returned.
func (s *Sender) Notify(ctx context.Context, userID, templateID string, data map[string]string) (Payload, error) {
	rendered, err := s.templates.Render(templateID, data)
	if err != nil {
		return Payload{}, err
	}

	p, err := s.store.SaveNotification(ctx, userID, rendered)
	if err != nil {
		return Payload{}, fmt.Errorf("save notification: %w", err)
	}

	if s.push != nil {
		if err := s.push.PublishToUser(ctx, userID, GeneralFrame(p)); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Str("notification_id", p.ID).Msg("notification push failed")
		}
	}
	return p, nil
}
