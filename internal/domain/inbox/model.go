package inbox

import (
	"time"

	"github.com/google/uuid"
)

// Notification maps to the notifications table.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Link      *string   `db:"link" json:"link,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DefaultListLimit applies when a listing request carries no limit.
const DefaultListLimit = 20

const defaultType = "general"
