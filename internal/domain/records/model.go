package records

import (
	"time"

	"github.com/google/uuid"
)

// HospitalVisit maps to the hospital_visits table.
type HospitalVisit struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	UserID               uuid.UUID  `db:"user_id" json:"user_id"`
	HospitalName         string     `db:"hospital_name" json:"hospital_name"`
	HospitalAddress      *string    `db:"hospital_address" json:"hospital_address,omitempty"`
	Department           *string    `db:"department" json:"department,omitempty"`
	AdmissionDate        time.Time  `db:"admission_date" json:"admission_date"`
	DischargeDate        *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	VisitType            string     `db:"visit_type" json:"visit_type"`
	PrimaryDoctor        string     `db:"primary_doctor" json:"primary_doctor"`
	Diagnosis            string     `db:"diagnosis" json:"diagnosis"`
	TreatmentSummary     *string    `db:"treatment_summary" json:"treatment_summary,omitempty"`
	Cost                 *float64   `db:"cost" json:"cost,omitempty"`
	InsuranceClaimStatus string     `db:"insurance_claim_status" json:"insurance_claim_status"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// ClaimPending is the claim status of a newly recorded visit.
const ClaimPending = "Pending"

// Prescription maps to the prescriptions table.
type Prescription struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	UserID              uuid.UUID  `db:"user_id" json:"user_id"`
	VisitID             *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	DrugName            string     `db:"drug_name" json:"drug_name"`
	Dosage              string     `db:"dosage" json:"dosage"`
	Frequency           string     `db:"frequency" json:"frequency"`
	StartDate           time.Time  `db:"start_date" json:"start_date"`
	EndDate             *time.Time `db:"end_date" json:"end_date,omitempty"`
	RefillsRemaining    int        `db:"refills_remaining" json:"refills_remaining"`
	SideEffects         *string    `db:"side_effects" json:"side_effects,omitempty"`
	SpecialInstructions *string    `db:"special_instructions" json:"special_instructions,omitempty"`
	PrescribingDoctor   string     `db:"prescribing_doctor" json:"prescribing_doctor"`
	Pharmacy            *string    `db:"pharmacy" json:"pharmacy,omitempty"`
	Status              string     `db:"status" json:"status"`
	DocumentURL         *string    `db:"document_url" json:"document_url,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// Allergy maps to the allergies table.
type Allergy struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	UserID            uuid.UUID  `db:"user_id" json:"user_id"`
	AllergenName      string     `db:"allergen_name" json:"allergen_name"`
	AllergenType      string     `db:"allergen_type" json:"allergen_type"`
	Severity          string     `db:"severity" json:"severity"`
	ReactionSymptoms  string     `db:"reaction_symptoms" json:"reaction_symptoms"`
	TreatmentProtocol *string    `db:"treatment_protocol" json:"treatment_protocol,omitempty"`
	FirstObserved     time.Time  `db:"first_observed" json:"first_observed"`
	LastReaction      *time.Time `db:"last_reaction" json:"last_reaction,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// LabResult maps to the lab_results table.
type LabResult struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	VisitID        *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	TestName       string     `db:"test_name" json:"test_name"`
	TestCategory   string     `db:"test_category" json:"test_category"`
	ResultValue    string     `db:"result_value" json:"result_value"`
	ResultUnit     *string    `db:"result_unit" json:"result_unit,omitempty"`
	ReferenceRange *string    `db:"reference_range" json:"reference_range,omitempty"`
	Status         string     `db:"status" json:"status"`
	TestDate       time.Time  `db:"test_date" json:"test_date"`
	OrderingDoctor string     `db:"ordering_doctor" json:"ordering_doctor"`
	LabFacility    *string    `db:"lab_facility" json:"lab_facility,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	DocumentURL    *string    `db:"document_url" json:"document_url,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
