// Package inbox stores the notifications shown in each user's inbox.
package inbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/platform/notification"
	"github.com/medhub/medhub/internal/platform/websocket"
)

type Service struct {
	repo   Repository
	push   websocket.Publisher
	logger zerolog.Logger
}

// NewService builds the inbox service. push delivers directly sent
// notifications to open connections and may be nil.
func NewService(repo Repository, push websocket.Publisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, push: push, logger: logger}
}

// SaveNotification stores a rendered notification for userID. It lets the
// inbox back a notification.Sender.
func (s *Service) SaveNotification(ctx context.Context, userID string, r notification.Rendered) (notification.Payload, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return notification.Payload{}, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	n := &Notification{
		UserID:  uid,
		Title:   r.Title,
		Message: r.Message,
		Type:    string(r.Kind),
	}
	if r.Link != "" {
		link := r.Link
		n.Link = &link
	}
	if err := s.Create(ctx, n); err != nil {
		return notification.Payload{}, err
	}
	return toPayload(n), nil
}

func (s *Service) Create(ctx context.Context, n *Notification) error {
	if n.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Message == "" {
		return fmt.Errorf("message is required")
	}
	if n.Type == "" {
		n.Type = defaultType
	}
	n.IsRead = false
	return s.repo.Create(ctx, n)
}

// Send stores n and pushes it to the recipient's open connections.
func (s *Service) Send(ctx context.Context, n *Notification) error {
	if err := s.Create(ctx, n); err != nil {
		return err
	}
	if s.push == nil {
		return nil
	}
	if err := s.push.PublishToUser(ctx, n.UserID.String(), notification.GeneralFrame(toPayload(n))); err != nil {
		s.logger.Warn().Err(err).Str("notification_id", n.ID.String()).Msg("notification push failed")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns userID's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func toPayload(n *Notification) notification.Payload {
	p := notification.Payload{
		ID:        n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      notification.Kind(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.Link != nil {
		p.Link = *n.Link
	}
	return p
}
