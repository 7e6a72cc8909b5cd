package records

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type VisitRepository interface {
	Create(ctx context.Context, v *HospitalVisit) error
	GetByID(ctx context.Context, id uuid.UUID) (*HospitalVisit, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*HospitalVisit, int, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
}

type AllergyRepository interface {
	Create(ctx context.Context, a *Allergy) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Allergy, int, error)
}

type LabResultRepository interface {
	Create(ctx context.Context, r *LabResult) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*LabResult, int, error)
}

// DashboardRepository reads across the clinical tables for the doctor
// dashboard.
type DashboardRepository interface {
	Stats(ctx context.Context, scope DoctorScope, since time.Time) (*DashboardStats, error)
	// RecentEvents returns up to perKind of each event kind.
	RecentEvents(ctx context.Context, scope DoctorScope, perKind int) ([]ActivityEvent, error)
}
