package insurance

import (
	"context"

	"github.com/google/uuid"
)

type PolicyRepository interface {
	Create(ctx context.Context, p *Policy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Policy, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Policy, int, error)
}

type ClaimRepository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	Update(ctx context.Context, c *Claim) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Claim, int, error)
}
