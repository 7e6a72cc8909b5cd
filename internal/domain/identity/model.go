package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. Patients, doctors and researchers are all
// users; doctors and researchers carry an extra profile row.
type User struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	Email                 string     `db:"email" json:"email"`
	FullName              string     `db:"full_name" json:"full_name"`
	Role                  string     `db:"role" json:"role"`
	DateOfBirth           *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Phone                 *string    `db:"phone" json:"phone,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	BloodType             *string    `db:"blood_type" json:"blood_type,omitempty"`
	HeightCM              *float64   `db:"height_cm" json:"height_cm,omitempty"`
	WeightKG              *float64   `db:"weight_kg" json:"weight_kg,omitempty"`
	IsVerified            bool       `db:"is_verified" json:"is_verified"`
	HospitalName          *string    `db:"hospital_name" json:"hospital_name,omitempty"`
	HospitalState         *string    `db:"hospital_state" json:"hospital_state,omitempty"`
	HospitalCity          *string    `db:"hospital_city" json:"hospital_city,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// UserFilter narrows user listings. Empty fields match everything.
type UserFilter struct {
	Role         string
	HospitalName string
}

// ProfileUpdate is a partial update of the caller's own user record. Nil
// fields are left unchanged.
type ProfileUpdate struct {
	FullName              *string    `json:"full_name"`
	DateOfBirth           *time.Time `json:"date_of_birth"`
	Phone                 *string    `json:"phone"`
	EmergencyContactName  *string    `json:"emergency_contact_name"`
	EmergencyContactPhone *string    `json:"emergency_contact_phone"`
	BloodType             *string    `json:"blood_type"`
	HeightCM              *float64   `json:"height_cm"`
	WeightKG              *float64   `json:"weight_kg"`
	HospitalName          *string    `json:"hospital_name"`
	HospitalState         *string    `json:"hospital_state"`
	HospitalCity          *string    `json:"hospital_city"`
}

func (p ProfileUpdate) apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.DateOfBirth != nil {
		u.DateOfBirth = p.DateOfBirth
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.EmergencyContactName != nil {
		u.EmergencyContactName = p.EmergencyContactName
	}
	if p.EmergencyContactPhone != nil {
		u.EmergencyContactPhone = p.EmergencyContactPhone
	}
	if p.BloodType != nil {
		u.BloodType = p.BloodType
	}
	if p.HeightCM != nil {
		u.HeightCM = p.HeightCM
	}
	if p.WeightKG != nil {
		u.WeightKG = p.WeightKG
	}
	if p.HospitalName != nil {
		u.HospitalName = p.HospitalName
	}
	if p.HospitalState != nil {
		u.HospitalState = p.HospitalState
	}
	if p.HospitalCity != nil {
		u.HospitalCity = p.HospitalCity
	}
}

// Doctor maps to the doctors table.
type Doctor struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	UserID              uuid.UUID `db:"user_id" json:"user_id"`
	Specialty           string    `db:"specialty" json:"specialty"`
	LicenseNumber       string    `db:"license_number" json:"license_number"`
	YearsOfExperience   int       `db:"years_of_experience" json:"years_of_experience"`
	HospitalAffiliation *string   `db:"hospital_affiliation" json:"hospital_affiliation,omitempty"`
	Bio                 *string   `db:"bio" json:"bio,omitempty"`
	HospitalName        *string   `db:"hospital_name" json:"hospital_name,omitempty"`
	HospitalState       *string   `db:"hospital_state" json:"hospital_state,omitempty"`
	HospitalCity        *string   `db:"hospital_city" json:"hospital_city,omitempty"`
	FullName            string    `db:"full_name" json:"full_name,omitempty"`
}

// PendingLicense marks a doctor profile created before verification.
const PendingLicense = "PENDING"

// DoctorUpdate is a doctor's edit of their own profile. The license number
// is managed by verification and cannot be set here.
type DoctorUpdate struct {
	Specialty           *string `json:"specialty"`
	YearsOfExperience   *int    `json:"years_of_experience"`
	HospitalAffiliation *string `json:"hospital_affiliation"`
	Bio                 *string `json:"bio"`
	HospitalName        *string `json:"hospital_name"`
	HospitalState       *string `json:"hospital_state"`
	HospitalCity        *string `json:"hospital_city"`
}

func (u DoctorUpdate) apply(d *Doctor) {
	if u.Specialty != nil {
		d.Specialty = *u.Specialty
	}
	if u.YearsOfExperience != nil {
		d.YearsOfExperience = *u.YearsOfExperience
	}
	if u.HospitalAffiliation != nil {
		d.HospitalAffiliation = u.HospitalAffiliation
	}
	if u.Bio != nil {
		d.Bio = u.Bio
	}
	if u.HospitalName != nil {
		d.HospitalName = u.HospitalName
	}
	if u.HospitalState != nil {
		d.HospitalState = u.HospitalState
	}
	if u.HospitalCity != nil {
		d.HospitalCity = u.HospitalCity
	}
}

// Researcher maps to the researchers table.
type Researcher struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	Institution       string    `db:"institution" json:"institution"`
	FieldOfStudy      string    `db:"field_of_study" json:"field_of_study"`
	PublicationsCount int       `db:"publications_count" json:"publications_count"`
	CurrentProjects   *string   `db:"current_projects" json:"current_projects,omitempty"`
}

// ResearcherUpdate is a researcher's edit of their own profile.
type ResearcherUpdate struct {
	Institution       *string `json:"institution"`
	FieldOfStudy      *string `json:"field_of_study"`
	PublicationsCount *int    `json:"publications_count"`
	CurrentProjects   *string `json:"current_projects"`
}

func (u ResearcherUpdate) apply(r *Researcher) {
	if u.Institution != nil {
		r.Institution = *u.Institution
	}
	if u.FieldOfStudy != nil {
		r.FieldOfStudy = *u.FieldOfStudy
	}
	if u.PublicationsCount != nil {
		r.PublicationsCount = *u.PublicationsCount
	}
	if u.CurrentProjects != nil {
		r.CurrentProjects = u.CurrentProjects
	}
}

// PatientProfile maps to the patient_profiles table: the extended history a
// patient fills in beyond their user record.
type PatientProfile struct {
	UserID             uuid.UUID  `db:"user_id" json:"user_id"`
	Gender             *string    `db:"gender" json:"gender,omitempty"`
	Address            *string    `db:"address" json:"address,omitempty"`
	MaritalStatus      *string    `db:"marital_status" json:"marital_status,omitempty"`
	Occupation         *string    `db:"occupation" json:"occupation,omitempty"`
	PreferredLanguage  *string    `db:"preferred_language" json:"preferred_language,omitempty"`
	ChronicConditions  *string    `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	PastSurgeries      *string    `db:"past_surgeries" json:"past_surgeries,omitempty"`
	FamilyHistory      *string    `db:"family_history" json:"family_history,omitempty"`
	CurrentMedications *string    `db:"current_medications" json:"current_medications,omitempty"`
	SmokingStatus      *string    `db:"smoking_status" json:"smoking_status,omitempty"`
	AlcoholUse         *string    `db:"alcohol_use" json:"alcohol_use,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// PatientProfileUpdate is a partial update; nil fields are left unchanged.
type PatientProfileUpdate struct {
	Gender             *string `json:"gender"`
	Address            *string `json:"address"`
	MaritalStatus      *string `json:"marital_status"`
	Occupation         *string `json:"occupation"`
	PreferredLanguage  *string `json:"preferred_language"`
	ChronicConditions  *string `json:"chronic_conditions"`
	PastSurgeries      *string `json:"past_surgeries"`
	FamilyHistory      *string `json:"family_history"`
	CurrentMedications *string `json:"current_medications"`
	SmokingStatus      *string `json:"smoking_status"`
	AlcoholUse         *string `json:"alcohol_use"`
}

func (u PatientProfileUpdate) apply(p *PatientProfile) {
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	set(&p.Gender, u.Gender)
	set(&p.Address, u.Address)
	set(&p.MaritalStatus, u.MaritalStatus)
	set(&p.Occupation, u.Occupation)
	set(&p.PreferredLanguage, u.PreferredLanguage)
	set(&p.ChronicConditions, u.ChronicConditions)
	set(&p.PastSurgeries, u.PastSurgeries)
	set(&p.FamilyHistory, u.FamilyHistory)
	set(&p.CurrentMedications, u.CurrentMedications)
	set(&p.SmokingStatus, u.SmokingStatus)
	set(&p.AlcoholUse, u.AlcoholUse)
}
