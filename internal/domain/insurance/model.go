package insurance

import (
	"time"

	"github.com/google/uuid"
)

// Policy maps to the insurance_policies table.
type Policy struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	UserID           uuid.UUID      `db:"user_id" json:"user_id"`
	PolicyNumber     string         `db:"policy_number" json:"policy_number"`
	InsuranceCompany string         `db:"insurance_company" json:"insurance_company"`
	PolicyType       string         `db:"policy_type" json:"policy_type"`
	CoverageStart    time.Time      `db:"coverage_start" json:"coverage_start"`
	CoverageEnd      time.Time      `db:"coverage_end" json:"coverage_end"`
	PremiumAmount    float64        `db:"premium_amount" json:"premium_amount"`
	DeductibleAmount float64        `db:"deductible_amount" json:"deductible_amount"`
	DeductibleMet    float64        `db:"deductible_met" json:"deductible_met"`
	CoverageDetails  map[string]any `db:"coverage_details" json:"coverage_details,omitempty"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// Covers reports whether the policy is active and t falls inside its
// coverage period. Both ends are inclusive at day granularity.
func (p *Policy) Covers(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	day := truncateDay(t)
	return !day.Before(truncateDay(p.CoverageStart)) && !day.After(truncateDay(p.CoverageEnd))
}

// RemainingDeductible is the part of the deductible not yet met, never
// negative.
func (p *Policy) RemainingDeductible() float64 {
	if r := p.DeductibleAmount - p.DeductibleMet; r > 0 {
		return r
	}
	return 0
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Claim statuses.
const (
	ClaimSubmitted         = "Submitted"
	ClaimUnderReview       = "Under Review"
	ClaimApproved          = "Approved"
	ClaimPartiallyApproved = "Partially Approved"
	ClaimDenied            = "Denied"
	ClaimPaid              = "Paid"
)

var validClaimStatuses = map[string]bool{
	ClaimSubmitted:         true,
	ClaimUnderReview:       true,
	ClaimApproved:          true,
	ClaimPartiallyApproved: true,
	ClaimDenied:            true,
	ClaimPaid:              true,
}

// Claim maps to the claims table.
type Claim struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	PolicyID       uuid.UUID  `db:"policy_id" json:"policy_id"`
	VisitID        *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	ClaimNumber    string     `db:"claim_number" json:"claim_number"`
	ClaimAmount    float64    `db:"claim_amount" json:"claim_amount"`
	ApprovedAmount *float64   `db:"approved_amount" json:"approved_amount,omitempty"`
	Status         string     `db:"status" json:"status"`
	SubmissionDate time.Time  `db:"submission_date" json:"submission_date"`
	ProcessedDate  *time.Time `db:"processed_date" json:"processed_date,omitempty"`
	ReasonForClaim string     `db:"reason_for_claim" json:"reason_for_claim"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Closed reports whether the claim has reached a final status.
func (c *Claim) Closed() bool {
	return c.Status == ClaimDenied || c.Status == ClaimPaid
}

// Adjudication is an insurer decision on a submitted claim.
type Adjudication struct {
	Status         string   `json:"status"`
	ApprovedAmount *float64 `json:"approved_amount"`
	Notes          *string  `json:"notes"`
}
