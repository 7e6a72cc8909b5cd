package identity

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f UserFilter, limit, offset int) ([]*User, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context, hospitalName string, limit, offset int) ([]*Doctor, int, error)
}

type ResearcherRepository interface {
	Create(ctx context.Context, r *Researcher) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Researcher, error)
	Update(ctx context.Context, r *Researcher) error
	List(ctx context.Context, limit, offset int) ([]*Researcher, int, error)
}

type PatientProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*PatientProfile, error)
	// Upsert inserts p or replaces the existing row for p.UserID.
	Upsert(ctx context.Context, p *PatientProfile) error
}
