package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medhub/medhub/internal/domain/identity"
	"github.com/medhub/medhub/internal/platform/auth"
	"github.com/medhub/medhub/internal/platform/db"
)

type mockDashboardRepo struct {
	stats  DashboardStats
	events []ActivityEvent

	gotScope   DoctorScope
	gotSince   time.Time
	gotPerKind int
}

func (m *mockDashboardRepo) Stats(_ context.Context, scope DoctorScope, since time.Time) (*DashboardStats, error) {
	m.gotScope, m.gotSince = scope, since
	s := m.stats
	return &s, nil
}

func (m *mockDashboardRepo) RecentEvents(_ context.Context, scope DoctorScope, perKind int) ([]ActivityEvent, error) {
	m.gotScope, m.gotPerKind = scope, perKind
	return m.events, nil
}

var dashNow = time.Date(2026, 6, 15, 16, 45, 0, 0, time.UTC)

func newTestDashboard() (*Dashboard, *mockDashboardRepo, *mockDirectory) {
	repo := &mockDashboardRepo{}
	dir := &mockDirectory{users: make(map[uuid.UUID]*identity.User)}
	d := NewDashboard(repo, dir)
	d.now = func() time.Time { return dashNow }
	return d, repo, dir
}

func addDoctor(dir *mockDirectory, name, hospital string) uuid.UUID {
	id := uuid.New()
	u := &identity.User{ID: id, Role: auth.RoleDoctor, FullName: name}
	if hospital != "" {
		u.HospitalName = &hospital
	}
	dir.users[id] = u
	return id
}

func TestDashboard_StatsScope(t *testing.T) {
	d, repo, dir := newTestDashboard()
	repo.stats = DashboardStats{TotalPatients: 4, CriticalAlerts: 1, Appointments: 2, PendingReports: 3}
	doc := addDoctor(dir, "Dr. Meera Iyer", "City General")

	got, err := d.Stats(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != repo.stats {
		t.Errorf("expected %+v, got %+v", repo.stats, *got)
	}
	want := DoctorScope{DoctorName: "Dr. Meera Iyer", HospitalName: "City General"}
	if repo.gotScope != want {
		t.Errorf("expected scope %+v, got %+v", want, repo.gotScope)
	}
	if !repo.gotSince.Equal(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected counting from midnight, got %s", repo.gotSince)
	}
}

func TestDashboard_NoHospitalScopesEverywhere(t *testing.T) {
	d, repo, dir := newTestDashboard()
	doc := addDoctor(dir, "Dr. Rao", "")

	if _, err := d.Stats(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotScope.HospitalName != "" {
		t.Errorf("expected empty hospital, got %q", repo.gotScope.HospitalName)
	}
}

func TestDashboard_OnlyDoctors(t *testing.T) {
	d, _, dir := newTestDashboard()
	patient := uuid.New()
	dir.users[patient] = &identity.User{ID: patient, Role: auth.RolePatient}

	if _, err := d.Stats(context.Background(), patient); !errors.Is(err, ErrNotDoctor) {
		t.Errorf("expected ErrNotDoctor, got %v", err)
	}
	if _, err := d.RecentActivity(context.Background(), patient); !errors.Is(err, ErrNotDoctor) {
		t.Errorf("expected ErrNotDoctor, got %v", err)
	}
	if _, err := d.Stats(context.Background(), uuid.New()); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound for an unknown user, got %v", err)
	}
}

func TestDashboard_RecentActivityMergesNewestFirst(t *testing.T) {
	d, repo, dir := newTestDashboard()
	doc := addDoctor(dir, "Dr. Rao", "City General")
	repo.events = []ActivityEvent{
		{Kind: EventRegistration, Patient: "Asha", At: dashNow.Add(-3 * time.Hour)},
		{Kind: EventAppointment, Patient: "Ravi", Subject: "Follow-up", Detail: "Scheduled", At: dashNow.Add(24 * time.Hour)},
		{Kind: EventPrescription, Patient: "", Subject: "Metformin", Detail: "500mg", At: dashNow.Add(-time.Hour)},
		{Kind: "unknown", Patient: "X", At: dashNow},
	}

	feed, err := d.RecentActivity(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotPerKind != activityPerKind {
		t.Errorf("expected %d per kind, got %d", activityPerKind, repo.gotPerKind)
	}
	if len(feed) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(feed), feed)
	}

	want := []Activity{
		{Type: "appointment", Patient: "Ravi", Desc: "Follow-up appointment (Scheduled)"},
		{Type: "report", Patient: "Unknown", Desc: "Prescribed: Metformin (500mg)"},
		{Type: "alert", Patient: "Asha", Desc: "New patient registered"},
	}
	for i, w := range want {
		if feed[i].Type != w.Type || feed[i].Patient != w.Patient || feed[i].Desc != w.Desc {
			t.Errorf("entry %d: expected %+v, got %+v", i, w, feed[i])
		}
	}
	if feed[0].Timestamp != float64(dashNow.Add(24*time.Hour).Unix()) {
		t.Errorf("expected timestamp in seconds, got %v", feed[0].Timestamp)
	}
}

func TestDashboard_RecentActivityCapped(t *testing.T) {
	d, repo, dir := newTestDashboard()
	doc := addDoctor(dir, "Dr. Rao", "")
	for i := 0; i < 25; i++ {
		repo.events = append(repo.events, ActivityEvent{
			Kind: EventPrescription, Patient: "P", Subject: "Drug", Detail: "1mg",
			At: dashNow.Add(-time.Duration(i) * time.Minute),
		})
	}

	feed, err := d.RecentActivity(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != activityLimit {
		t.Fatalf("expected %d entries, got %d", activityLimit, len(feed))
	}
	if !feed[0].Time.Equal(dashNow) {
		t.Errorf("expected newest entry first, got %s", feed[0].Time)
	}
}

func TestDashboardHandler_Stats(t *testing.T) {
	d, repo, dir := newTestDashboard()
	repo.stats = DashboardStats{TotalPatients: 7}
	doc := addDoctor(dir, "Dr. Rao", "")
	h := NewDashboardHandler(d)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/doctors/me/dashboard-stats", nil), doc, auth.RoleDoctor)
	rec := httptest.NewRecorder()
	if err := h.Stats(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got DashboardStats
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.TotalPatients != 7 {
		t.Errorf("expected 7 patients, got %d", got.TotalPatients)
	}
}

func TestDashboardHandler_AdminWithoutDoctorProfile(t *testing.T) {
	d, _, dir := newTestDashboard()
	admin := uuid.New()
	dir.users[admin] = &identity.User{ID: admin, Role: auth.RoleAdmin}
	h := NewDashboardHandler(d)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/doctors/me/recent-activity", nil), admin, auth.RoleAdmin)
	err := h.RecentActivity(echo.New().NewContext(req, httptest.NewRecorder()))
	if httpStatus(t, err) != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestDashboardRoutes_RequireDoctor(t *testing.T) {
	d, _, _ := newTestDashboard()
	e := echo.New()
	e.Use(auth.DevAuthMiddleware())
	NewDashboardHandler(d).RegisterRoutes(e.Group("/api/v1"))

	for _, path := range []string{"/api/v1/doctors/me/dashboard-stats", "/api/v1/doctors/me/recent-activity"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-User-ID", uuid.NewString())
		req.Header.Set("X-User-Role", auth.RolePatient)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", path, rec.Code)
		}
	}
}
