package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/domain/identity"
	"github.com/medhub/medhub/internal/domain/records"
	"github.com/medhub/medhub/internal/platform/auth"
	"github.com/medhub/medhub/internal/platform/db"
	"github.com/medhub/medhub/internal/platform/notification"
)

const notifyDateLayout = "2006-01-02 15:04"

// VisitCreator records the hospital visit of a completed appointment.
type VisitCreator interface {
	CreateVisit(ctx context.Context, v *records.HospitalVisit) error
}

type Notifier interface {
	Notify(ctx context.Context, userID, templateID string, data map[string]string) (notification.Payload, error)
}

type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// TxRunner runs fn inside a transaction carried by ctx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// ErrInvalidStatus is returned for a status outside the known set.
var ErrInvalidStatus = errors.New("invalid appointment status")

type Service struct {
	repo      Repository
	visits    VisitCreator
	notifier  Notifier
	directory Directory
	inTx      TxRunner
	logger    zerolog.Logger
}

// NewService builds the appointment service. A nil inTx runs status
// changes without a transaction.
func NewService(repo Repository, visits VisitCreator, notifier Notifier, directory Directory, inTx TxRunner, logger zerolog.Logger) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{
		repo:      repo,
		visits:    visits,
		notifier:  notifier,
		directory: directory,
		inTx:      inTx,
		logger:    logger,
	}
}

func validate(a *Appointment) error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if a.DoctorName == "" {
		return fmt.Errorf("doctor_name is required")
	}
	if a.HospitalClinic == "" {
		return fmt.Errorf("hospital_clinic is required")
	}
	if a.AppointmentDate.IsZero() {
		return fmt.Errorf("appointment_date is required")
	}
	if a.AppointmentType == "" {
		return fmt.Errorf("appointment_type is required")
	}
	if a.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	if a.ConsultationMode == "" {
		a.ConsultationMode = "Offline"
	}
	if !validModes[a.ConsultationMode] {
		return fmt.Errorf("invalid consultation_mode: %s", a.ConsultationMode)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, a.Status)
	}
	return nil
}

// Create books an appointment and tells the patient about it.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if err := validate(a); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.notify(ctx, a.UserID, notification.AppointmentScheduled, map[string]string{
		"doctor": a.DoctorName,
		"date":   a.AppointmentDate.Format(notifyDateLayout),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListForCaller returns the appointments a doctor attends, matched on their
// name and hospital, or the caller's own bookings for everyone else.
func (s *Service) ListForCaller(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	u, err := s.directory.GetUser(ctx, callerID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, 0, err
	}
	if u != nil && u.Role == auth.RoleDoctor {
		f := DoctorFilter{DoctorName: u.FullName}
		if u.HospitalName != nil {
			f.HospitalClinic = *u.HospitalName
		}
		return s.repo.ListByDoctor(ctx, f, limit, offset)
	}
	return s.repo.ListByUser(ctx, callerID, limit, offset)
}

// Update replaces every editable field of the appointment id. The owner,
// creation time and status are kept; status only moves through UpdateStatus.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Appointment) (*Appointment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID = existing.ID
	in.UserID = existing.UserID
	in.CreatedAt = existing.CreatedAt
	in.Status = existing.Status
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// UpdateStatus moves an appointment to status. The first move to Completed
// records a hospital visit in the same transaction and notifies the patient.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var (
		a         *Appointment
		completed bool
	)
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		completed = status == StatusCompleted && a.Status != StatusCompleted
		a.Status = status
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		if !completed {
			return nil
		}
		if err := s.visits.CreateVisit(ctx, visitFor(a)); err != nil {
			return fmt.Errorf("record visit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.notify(ctx, a.UserID, notification.AppointmentCompleted, map[string]string{
			"doctor": a.DoctorName,
			"clinic": a.HospitalClinic,
		})
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func visitFor(a *Appointment) *records.HospitalVisit {
	return &records.HospitalVisit{
		UserID:               a.UserID,
		HospitalName:         a.HospitalClinic,
		AdmissionDate:        a.AppointmentDate,
		VisitType:            a.AppointmentType,
		PrimaryDoctor:        a.DoctorName,
		Diagnosis:            a.Reason,
		TreatmentSummary:     a.Notes,
		InsuranceClaimStatus: records.ClaimPending,
	}
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, templateID string, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, userID.String(), templateID, data); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Str("template", templateID).Msg("notification failed")
	}
}
