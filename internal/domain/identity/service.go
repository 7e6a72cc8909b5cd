package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medhub/medhub/internal/platform/auth"
	"github.com/medhub/medhub/internal/platform/db"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrWrongRole is returned when a profile operation does not match the
// user's role.
var ErrWrongRole = errors.New("operation not allowed for this role")

var validRoles = map[string]bool{
	auth.RolePatient:    true,
	auth.RoleDoctor:     true,
	auth.RoleResearcher: true,
	auth.RoleAdmin:      true,
}

type Service struct {
	users       UserRepository
	doctors     DoctorRepository
	researchers ResearcherRepository
	profiles    PatientProfileRepository
}

func NewService(users UserRepository, doctors DoctorRepository, researchers ResearcherRepository, profiles PatientProfileRepository) *Service {
	return &Service{users: users, doctors: doctors, researchers: researchers, profiles: profiles}
}

// -- Users --

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if strings.TrimSpace(u.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if u.Role == "" {
		u.Role = auth.RolePatient
	}
	if !validRoles[u.Role] {
		return fmt.Errorf("invalid role: %s", u.Role)
	}

	existing, err := s.users.GetByEmail(ctx, u.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, f UserFilter, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, f, limit, offset)
}

// UpdateProfile applies a partial update to the user's own record.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	if upd.FullName != nil && strings.TrimSpace(*upd.FullName) == "" {
		return nil, fmt.Errorf("full_name cannot be empty")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.apply(u)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// -- Patients --

func (s *Service) ListPatients(ctx context.Context, hospitalName string, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, UserFilter{Role: auth.RolePatient, HospitalName: hospitalName}, limit, offset)
}

// DeletePatient removes a user whose role is patient.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role != auth.RolePatient {
		return db.ErrNotFound
	}
	return s.users.Delete(ctx, id)
}

// -- Doctors --

func (s *Service) ListDoctors(ctx context.Context, hospitalName string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, hospitalName, limit, offset)
}

// UpdateMyDoctorProfile edits the doctor profile of userID, creating a
// pending profile on first use.
func (s *Service) UpdateMyDoctorProfile(ctx context.Context, userID uuid.UUID, upd DoctorUpdate) (*Doctor, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != auth.RoleDoctor {
		return nil, ErrWrongRole
	}

	d, err := s.doctors.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		d = &Doctor{
			UserID:        userID,
			Specialty:     "General",
			LicenseNumber: PendingLicense,
			HospitalName:  u.HospitalName,
			HospitalState: u.HospitalState,
			HospitalCity:  u.HospitalCity,
		}
		if err := s.doctors.Create(ctx, d); err != nil {
			return nil, fmt.Errorf("create doctor profile: %w", err)
		}
	case err != nil:
		return nil, err
	}

	upd.apply(d)
	if d.LicenseNumber == "" {
		d.LicenseNumber = PendingLicense
	}
	if strings.TrimSpace(d.Specialty) == "" {
		return nil, fmt.Errorf("specialty is required")
	}
	if d.YearsOfExperience < 0 {
		return nil, fmt.Errorf("years_of_experience cannot be negative")
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	d.FullName = u.FullName
	return d, nil
}

// -- Patient Profiles --

// MyPatientProfile returns the extended profile of patient userID, storing
// an empty one on first access.
func (s *Service) MyPatientProfile(ctx context.Context, userID uuid.UUID) (*PatientProfile, error) {
	if err := s.requirePatient(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		p = &PatientProfile{UserID: userID}
		if err := s.profiles.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("create patient profile: %w", err)
		}
		return p, nil
	}
	return p, err
}

// UpdateMyPatientProfile applies upd to the profile of patient userID,
// creating the profile if needed.
func (s *Service) UpdateMyPatientProfile(ctx context.Context, userID uuid.UUID, upd PatientProfileUpdate) (*PatientProfile, error) {
	if err := s.requirePatient(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		p = &PatientProfile{UserID: userID}
	case err != nil:
		return nil, err
	}
	upd.apply(p)
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPatientProfile returns the stored profile of userID without creating
// one.
func (s *Service) GetPatientProfile(ctx context.Context, userID uuid.UUID) (*PatientProfile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

func (s *Service) requirePatient(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != auth.RolePatient {
		return ErrWrongRole
	}
	return nil
}

// -- Researchers --

func (s *Service) ListResearchers(ctx context.Context, limit, offset int) ([]*Researcher, int, error) {
	return s.researchers.List(ctx, limit, offset)
}

func (s *Service) CreateResearcher(ctx context.Context, r *Researcher) error {
	if r.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if r.Institution == "" {
		return fmt.Errorf("institution is required")
	}
	if r.FieldOfStudy == "" {
		return fmt.Errorf("field_of_study is required")
	}
	if _, err := s.users.GetByID(ctx, r.UserID); err != nil {
		return fmt.Errorf("user %s: %w", r.UserID, err)
	}
	return s.researchers.Create(ctx, r)
}

// UpdateMyResearcherProfile edits the researcher profile of userID.
func (s *Service) UpdateMyResearcherProfile(ctx context.Context, userID uuid.UUID, upd ResearcherUpdate) (*Researcher, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != auth.RoleResearcher {
		return nil, ErrWrongRole
	}
	r, err := s.researchers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	upd.apply(r)
	if err := s.researchers.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
