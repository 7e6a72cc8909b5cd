package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/domain/identity"
	"github.com/medhub/medhub/internal/platform/auth"
	"github.com/medhub/medhub/internal/platform/notification"
)

// Notifier delivers a templated notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, templateID string, data map[string]string) (notification.Payload, error)
}

// Directory resolves users, used to stamp the prescribing doctor.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

var validAllergySeverities = map[string]bool{
	"Mild": true, "Moderate": true, "Severe": true, "Life-threatening": true,
}

var validPrescriptionStatuses = map[string]bool{
	"Active": true, "Completed": true, "Discontinued": true, "On Hold": true,
}

var validLabStatuses = map[string]bool{
	"Normal": true, "Abnormal": true, "Critical": true, "Pending": true,
}

type Service struct {
	visits        VisitRepository
	prescriptions PrescriptionRepository
	allergies     AllergyRepository
	labs          LabResultRepository
	directory     Directory
	notifier      Notifier
	logger        zerolog.Logger
}

func NewService(
	visits VisitRepository,
	prescriptions PrescriptionRepository,
	allergies AllergyRepository,
	labs LabResultRepository,
	directory Directory,
	notifier Notifier,
	logger zerolog.Logger,
) *Service {
	return &Service{
		visits:        visits,
		prescriptions: prescriptions,
		allergies:     allergies,
		labs:          labs,
		directory:     directory,
		notifier:      notifier,
		logger:        logger,
	}
}

// -- Hospital Visits --

func (s *Service) CreateVisit(ctx context.Context, v *HospitalVisit) error {
	if v.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if v.HospitalName == "" {
		return fmt.Errorf("hospital_name is required")
	}
	if v.AdmissionDate.IsZero() {
		return fmt.Errorf("admission_date is required")
	}
	if v.VisitType == "" {
		return fmt.Errorf("visit_type is required")
	}
	if v.PrimaryDoctor == "" {
		return fmt.Errorf("primary_doctor is required")
	}
	if v.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	if v.DischargeDate != nil && v.DischargeDate.Before(v.AdmissionDate) {
		return fmt.Errorf("discharge_date cannot be before admission_date")
	}
	if v.InsuranceClaimStatus == "" {
		v.InsuranceClaimStatus = ClaimPending
	}
	return s.visits.Create(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*HospitalVisit, error) {
	return s.visits.GetByID(ctx, id)
}

func (s *Service) ListVisits(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*HospitalVisit, int, error) {
	return s.visits.ListByUser(ctx, userID, limit, offset)
}

// -- Prescriptions --

// CreatePrescription stores p and notifies the patient. When the caller is
// a doctor, their name replaces whatever prescribing_doctor was sent.
func (s *Service) CreatePrescription(ctx context.Context, callerID uuid.UUID, p *Prescription) error {
	if callerID != uuid.Nil && s.directory != nil {
		caller, err := s.directory.GetUser(ctx, callerID)
		if err == nil && caller.Role == auth.RoleDoctor {
			p.PrescribingDoctor = caller.FullName
		}
	}

	if p.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(p.DrugName) == "" {
		return fmt.Errorf("drug_name is required")
	}
	if p.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}
	if p.Frequency == "" {
		return fmt.Errorf("frequency is required")
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if p.PrescribingDoctor == "" {
		return fmt.Errorf("prescribing_doctor is required")
	}
	if p.RefillsRemaining < 0 {
		return fmt.Errorf("refills_remaining cannot be negative")
	}
	if p.Status == "" {
		p.Status = "Active"
	}
	if !validPrescriptionStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}

	if err := s.prescriptions.Create(ctx, p); err != nil {
		return err
	}

	s.notify(ctx, p.UserID, notification.PrescriptionIssued, map[string]string{
		"doctor": p.PrescribingDoctor,
		"drug":   p.DrugName,
	})
	return nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByUser(ctx, userID, limit, offset)
}

// -- Allergies --

func (s *Service) CreateAllergy(ctx context.Context, a *Allergy) error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if a.AllergenName == "" {
		return fmt.Errorf("allergen_name is required")
	}
	if a.AllergenType == "" {
		return fmt.Errorf("allergen_type is required")
	}
	if !validAllergySeverities[a.Severity] {
		return fmt.Errorf("invalid severity: %s", a.Severity)
	}
	if a.ReactionSymptoms == "" {
		return fmt.Errorf("reaction_symptoms is required")
	}
	if a.FirstObserved.IsZero() {
		return fmt.Errorf("first_observed is required")
	}
	return s.allergies.Create(ctx, a)
}

func (s *Service) ListAllergies(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Allergy, int, error) {
	return s.allergies.ListByUser(ctx, userID, limit, offset)
}

// -- Lab Results --

func (s *Service) CreateLabResult(ctx context.Context, l *LabResult) error {
	if l.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if l.TestName == "" {
		return fmt.Errorf("test_name is required")
	}
	if l.TestCategory == "" {
		return fmt.Errorf("test_category is required")
	}
	if l.ResultValue == "" {
		return fmt.Errorf("result_value is required")
	}
	if l.TestDate.IsZero() {
		return fmt.Errorf("test_date is required")
	}
	if l.OrderingDoctor == "" {
		return fmt.Errorf("ordering_doctor is required")
	}
	if l.Status == "" {
		l.Status = "Pending"
	}
	if !validLabStatuses[l.Status] {
		return fmt.Errorf("invalid status: %s", l.Status)
	}
	return s.labs.Create(ctx, l)
}

func (s *Service) ListLabResults(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*LabResult, int, error) {
	return s.labs.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, templateID string, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, userID.String(), templateID, data); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Str("template", templateID).Msg("notification failed")
	}
}
