package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medhub/medhub/internal/platform/db"
)

// -- Mock User Repository --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return db.ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f UserFilter, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.HospitalName != "" && (u.HospitalName == nil || *u.HospitalName != f.HospitalName) {
			continue
		}
		result = append(result, u)
	}
	return result, len(result), nil
}

// -- Mock Doctor Repository --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor // keyed by user id
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.UserID] = d
	return nil
}

func (m *mockDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.UserID] = d
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, hospitalName string, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		if hospitalName != "" && (d.HospitalName == nil || *d.HospitalName != hospitalName) {
			continue
		}
		result = append(result, d)
	}
	return result, len(result), nil
}

// -- Mock Researcher Repository --

type mockResearcherRepo struct {
	researchers map[uuid.UUID]*Researcher // keyed by user id
}

func newMockResearcherRepo() *mockResearcherRepo {
	return &mockResearcherRepo{researchers: make(map[uuid.UUID]*Researcher)}
}

func (m *mockResearcherRepo) Create(_ context.Context, r *Researcher) error {
	r.ID = uuid.New()
	m.researchers[r.UserID] = r
	return nil
}

func (m *mockResearcherRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Researcher, error) {
	r, ok := m.researchers[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return r, nil
}

func (m *mockResearcherRepo) Update(_ context.Context, r *Researcher) error {
	m.researchers[r.UserID] = r
	return nil
}

func (m *mockResearcherRepo) List(_ context.Context, limit, offset int) ([]*Researcher, int, error) {
	var result []*Researcher
	for _, r := range m.researchers {
		result = append(result, r)
	}
	return result, len(result), nil
}

// -- Mock Patient Profile Repository --

type mockPatientProfileRepo struct {
	profiles map[uuid.UUID]*PatientProfile
	upserts  int
}

func newMockPatientProfileRepo() *mockPatientProfileRepo {
	return &mockPatientProfileRepo{profiles: make(map[uuid.UUID]*PatientProfile)}
}

func (m *mockPatientProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*PatientProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientProfileRepo) Upsert(_ context.Context, p *PatientProfile) error {
	m.upserts++
	if existing, ok := m.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
		now := time.Now()
		p.UpdatedAt = &now
	} else {
		p.CreatedAt = time.Now()
	}
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func newTestService() *Service {
	return NewService(newMockUserRepo(), newMockDoctorRepo(), newMockResearcherRepo(), newMockPatientProfileRepo())
}

func strPtr(s string) *string { return &s }

func mustCreateUser(t *testing.T, svc *Service, email, role string) *User {
	t.Helper()
	u := &User{Email: email, FullName: "Test " + role, Role: role}
	if err := svc.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return u
}

// -- Tests --

func TestCreateUser(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "jane@example.com", FullName: "Jane Doe"}
	if err := svc.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if u.Role != "patient" {
		t.Errorf("expected default role patient, got %s", u.Role)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		name string
		user User
	}{
		{"missing email", User{FullName: "No Email"}},
		{"invalid email", User{Email: "nope", FullName: "Bad Email"}},
		{"missing name", User{Email: "a@b.c"}},
		{"bad role", User{Email: "a@b.c", FullName: "X", Role: "nurse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			if err := svc.CreateUser(context.Background(), &u); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	mustCreateUser(t, svc, "dup@example.com", "patient")

	err := svc.CreateUser(context.Background(), &User{Email: "DUP@example.com", FullName: "Again"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService()
	u := mustCreateUser(t, svc, "p@example.com", "patient")

	got, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{BloodType: strPtr("O+"), Phone: strPtr("555")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BloodType == nil || *got.BloodType != "O+" {
		t.Errorf("expected blood type O+, got %v", got.BloodType)
	}
	if got.FullName != "Test patient" {
		t.Errorf("full name should be unchanged, got %s", got.FullName)
	}

	if _, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{FullName: strPtr("  ")}); err == nil {
		t.Error("expected error for blank full_name")
	}
}

func TestListPatients_FiltersRole(t *testing.T) {
	svc := newTestService()
	mustCreateUser(t, svc, "p1@example.com", "patient")
	mustCreateUser(t, svc, "p2@example.com", "patient")
	mustCreateUser(t, svc, "d1@example.com", "doctor")

	patients, total, err := svc.ListPatients(context.Background(), "", 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(patients) != 2 {
		t.Errorf("expected 2 patients, got %d", total)
	}
}

func TestDeletePatient_RejectsNonPatient(t *testing.T) {
	svc := newTestService()
	doc := mustCreateUser(t, svc, "d@example.com", "doctor")

	if err := svc.DeletePatient(context.Background(), doc.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMyDoctorProfile_LazyCreate(t *testing.T) {
	svc := newTestService()
	doc := mustCreateUser(t, svc, "doc@example.com", "doctor")

	d, err := svc.UpdateMyDoctorProfile(context.Background(), doc.ID, DoctorUpdate{Specialty: strPtr("Cardiology")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.LicenseNumber != PendingLicense {
		t.Errorf("expected pending license, got %s", d.LicenseNumber)
	}
	if d.Specialty != "Cardiology" {
		t.Errorf("expected Cardiology, got %s", d.Specialty)
	}
	if d.FullName != "Test doctor" {
		t.Errorf("expected full name to be filled, got %q", d.FullName)
	}

	years := 12
	d, err = svc.UpdateMyDoctorProfile(context.Background(), doc.ID, DoctorUpdate{YearsOfExperience: &years})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Specialty != "Cardiology" || d.YearsOfExperience != 12 {
		t.Errorf("unexpected profile %+v", d)
	}
}

func TestUpdateMyDoctorProfile_WrongRole(t *testing.T) {
	svc := newTestService()
	p := mustCreateUser(t, svc, "p@example.com", "patient")

	if _, err := svc.UpdateMyDoctorProfile(context.Background(), p.ID, DoctorUpdate{}); !errors.Is(err, ErrWrongRole) {
		t.Fatalf("expected ErrWrongRole, got %v", err)
	}
}

func TestCreateResearcher(t *testing.T) {
	svc := newTestService()
	u := mustCreateUser(t, svc, "r@example.com", "researcher")

	r := &Researcher{UserID: u.ID, Institution: "MIT", FieldOfStudy: "Pharmacology"}
	if err := svc.CreateResearcher(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CreateResearcher(context.Background(), &Researcher{UserID: uuid.New(), Institution: "X", FieldOfStudy: "Y"}); err == nil {
		t.Error("expected error for unknown user")
	}
	if err := svc.CreateResearcher(context.Background(), &Researcher{UserID: u.ID}); err == nil {
		t.Error("expected error for missing institution")
	}

	pubs := 7
	got, err := svc.UpdateMyResearcherProfile(context.Background(), u.ID, ResearcherUpdate{PublicationsCount: &pubs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PublicationsCount != 7 || got.Institution != "MIT" {
		t.Errorf("unexpected profile %+v", got)
	}
}

func TestMyPatientProfile_CreatedOnFirstAccess(t *testing.T) {
	svc := newTestService()
	profiles := svc.profiles.(*mockPatientProfileRepo)
	u := mustCreateUser(t, svc, "pat@example.com", "patient")

	p, err := svc.MyPatientProfile(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != u.ID || p.Gender != nil {
		t.Errorf("expected an empty profile for %s, got %+v", u.ID, p)
	}

	if _, err := svc.MyPatientProfile(context.Background(), u.ID); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if profiles.upserts != 1 {
		t.Errorf("expected the profile to be stored once, got %d writes", profiles.upserts)
	}
}

func TestUpdateMyPatientProfile_Partial(t *testing.T) {
	svc := newTestService()
	u := mustCreateUser(t, svc, "pat@example.com", "patient")

	if _, err := svc.UpdateMyPatientProfile(context.Background(), u.ID, PatientProfileUpdate{
		Gender:            strPtr("Female"),
		ChronicConditions: strPtr("Type 2 diabetes"),
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	p, err := svc.UpdateMyPatientProfile(context.Background(), u.ID, PatientProfileUpdate{SmokingStatus: strPtr("Never")})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if p.Gender == nil || *p.Gender != "Female" {
		t.Errorf("expected gender to be kept, got %v", p.Gender)
	}
	if p.ChronicConditions == nil || *p.ChronicConditions != "Type 2 diabetes" {
		t.Errorf("expected chronic conditions to be kept, got %v", p.ChronicConditions)
	}
	if p.SmokingStatus == nil || *p.SmokingStatus != "Never" {
		t.Errorf("expected smoking status Never, got %v", p.SmokingStatus)
	}
}

func TestPatientProfile_WrongRole(t *testing.T) {
	svc := newTestService()
	doc := mustCreateUser(t, svc, "doc@example.com", "doctor")

	if _, err := svc.MyPatientProfile(context.Background(), doc.ID); !errors.Is(err, ErrWrongRole) {
		t.Errorf("expected ErrWrongRole, got %v", err)
	}
	if _, err := svc.UpdateMyPatientProfile(context.Background(), doc.ID, PatientProfileUpdate{}); !errors.Is(err, ErrWrongRole) {
		t.Errorf("expected ErrWrongRole, got %v", err)
	}
}

func TestGetPatientProfile_DoesNotCreate(t *testing.T) {
	svc := newTestService()
	u := mustCreateUser(t, svc, "pat@example.com", "patient")

	if _, err := svc.GetPatientProfile(context.Background(), u.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if n := len(svc.profiles.(*mockPatientProfileRepo).profiles); n != 0 {
		t.Errorf("expected no profile to be stored, got %d", n)
	}
}
