package knowledge

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Passage) error
	GetByID(ctx context.Context, id uuid.UUID) (*Passage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]*Hit, error)
	Count(ctx context.Context) (int, error)
}
