package insurance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/domain/records"
	"github.com/medhub/medhub/internal/platform/db"
)

// ErrClaimClosed is returned when adjudicating a denied or paid claim.
var ErrClaimClosed = errors.New("claim is already closed")

// VisitLookup resolves the hospital visit a claim is filed against.
type VisitLookup interface {
	GetVisit(ctx context.Context, id uuid.UUID) (*records.HospitalVisit, error)
}

type Service struct {
	policies PolicyRepository
	claims   ClaimRepository
	visits   VisitLookup
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(policies PolicyRepository, claims ClaimRepository, visits VisitLookup, logger zerolog.Logger) *Service {
	return &Service{
		policies: policies,
		claims:   claims,
		visits:   visits,
		logger:   logger,
		now:      time.Now,
	}
}

// -- Policies --

func (s *Service) CreatePolicy(ctx context.Context, p *Policy) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(p.PolicyNumber) == "" {
		return fmt.Errorf("policy_number is required")
	}
	if p.InsuranceCompany == "" {
		return fmt.Errorf("insurance_company is required")
	}
	if p.PolicyType == "" {
		return fmt.Errorf("policy_type is required")
	}
	if p.CoverageStart.IsZero() || p.CoverageEnd.IsZero() {
		return fmt.Errorf("coverage_start and coverage_end are required")
	}
	if p.CoverageEnd.Before(p.CoverageStart) {
		return fmt.Errorf("coverage_end cannot be before coverage_start")
	}
	if p.PremiumAmount < 0 || p.DeductibleAmount < 0 || p.DeductibleMet < 0 {
		return fmt.Errorf("amounts cannot be negative")
	}
	if p.DeductibleMet > p.DeductibleAmount {
		return fmt.Errorf("deductible_met cannot exceed deductible_amount")
	}
	return s.policies.Create(ctx, p)
}

func (s *Service) GetPolicy(ctx context.Context, id uuid.UUID) (*Policy, error) {
	return s.policies.GetByID(ctx, id)
}

func (s *Service) ListPolicies(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	return s.policies.ListByUser(ctx, userID, limit, offset)
}

// -- Claims --

// CreateClaim files c against one of the claimant's own policies. The
// policy must cover the submission date, and a referenced visit must
// belong to the same patient.
func (s *Service) CreateClaim(ctx context.Context, c *Claim) error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if c.PolicyID == uuid.Nil {
		return fmt.Errorf("policy_id is required")
	}
	if strings.TrimSpace(c.ClaimNumber) == "" {
		return fmt.Errorf("claim_number is required")
	}
	if c.ClaimAmount <= 0 {
		return fmt.Errorf("claim_amount must be positive")
	}
	if c.ReasonForClaim == "" {
		return fmt.Errorf("reason_for_claim is required")
	}
	if c.SubmissionDate.IsZero() {
		c.SubmissionDate = s.now()
	}

	// New claims always start unprocessed.
	c.Status = ClaimSubmitted
	c.ApprovedAmount = nil
	c.ProcessedDate = nil

	policy, err := s.policies.GetByID(ctx, c.PolicyID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("policy %s not found", c.PolicyID)
		}
		return err
	}
	if policy.UserID != c.UserID {
		return fmt.Errorf("policy %s does not belong to this patient", c.PolicyID)
	}
	if !policy.Covers(c.SubmissionDate) {
		return fmt.Errorf("policy %s does not cover %s", policy.PolicyNumber, c.SubmissionDate.Format(time.DateOnly))
	}

	if c.VisitID != nil && s.visits != nil {
		v, err := s.visits.GetVisit(ctx, *c.VisitID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("visit %s not found", *c.VisitID)
			}
			return err
		}
		if v.UserID != c.UserID {
			return fmt.Errorf("visit %s does not belong to this patient", *c.VisitID)
		}
	}

	return s.claims.Create(ctx, c)
}

func (s *Service) GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.claims.GetByID(ctx, id)
}

func (s *Service) ListClaims(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Claim, int, error) {
	return s.claims.ListByUser(ctx, userID, limit, offset)
}

// Adjudicate records the insurer's decision on claim id. Approval without
// an amount approves the full claim; denial approves nothing. Any decision
// other than Under Review stamps the processed date.
func (s *Service) Adjudicate(ctx context.Context, id uuid.UUID, a Adjudication) (*Claim, error) {
	if !validClaimStatuses[a.Status] || a.Status == ClaimSubmitted {
		return nil, fmt.Errorf("invalid status: %s", a.Status)
	}

	c, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Closed() {
		return nil, ErrClaimClosed
	}

	approved := a.ApprovedAmount
	switch a.Status {
	case ClaimApproved:
		if approved == nil {
			full := c.ClaimAmount
			approved = &full
		}
	case ClaimPartiallyApproved:
		if approved == nil || *approved <= 0 || *approved >= c.ClaimAmount {
			return nil, fmt.Errorf("partial approval needs an approved_amount between 0 and %.2f", c.ClaimAmount)
		}
	case ClaimDenied:
		zero := 0.0
		approved = &zero
	case ClaimPaid:
		if approved == nil {
			approved = c.ApprovedAmount
		}
		if approved == nil {
			return nil, fmt.Errorf("claim must be approved before it is paid")
		}
	}
	if approved != nil && (*approved < 0 || *approved > c.ClaimAmount) {
		return nil, fmt.Errorf("approved_amount must be between 0 and %.2f", c.ClaimAmount)
	}

	c.Status = a.Status
	c.ApprovedAmount = approved
	if a.Notes != nil {
		c.Notes = a.Notes
	}
	if a.Status != ClaimUnderReview {
		now := s.now()
		c.ProcessedDate = &now
	}

	if err := s.claims.Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info().Str("claim_id", c.ID.String()).Str("status", c.Status).Msg("claim adjudicated")
	return c, nil
}
