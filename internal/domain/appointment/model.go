package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "Scheduled"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusNoShow    = "No-Show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

var validModes = map[string]bool{
	"Offline": true,
	"Online":  true,
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	DoctorName       string     `db:"doctor_name" json:"doctor_name"`
	Specialty        *string    `db:"specialty" json:"specialty,omitempty"`
	HospitalClinic   string     `db:"hospital_clinic" json:"hospital_clinic"`
	Location         *string    `db:"location" json:"location,omitempty"`
	ConsultationMode string     `db:"consultation_mode" json:"consultation_mode"`
	AppointmentDate  time.Time  `db:"appointment_date" json:"appointment_date"`
	AppointmentType  string     `db:"appointment_type" json:"appointment_type"`
	Reason           string     `db:"reason" json:"reason"`
	Status           string     `db:"status" json:"status"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// DoctorFilter selects the appointments a doctor attends.
type DoctorFilter struct {
	DoctorName     string
	HospitalClinic string
}
