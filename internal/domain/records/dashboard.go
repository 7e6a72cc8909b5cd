package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medhub/medhub/internal/platform/auth"
)

// ErrNotDoctor is returned when a non-doctor asks for a doctor dashboard.
var ErrNotDoctor = errors.New("only doctors have a dashboard")

const (
	activityPerKind = 10
	activityLimit   = 10
)

// Recent event kinds read for the activity feed.
const (
	EventRegistration = "registration"
	EventAppointment  = "appointment"
	EventPrescription = "prescription"
)

// DoctorScope selects the rows a doctor's dashboard covers. Appointments,
// prescriptions and lab orders match the doctor by name; patients match by
// hospital, or everywhere when the doctor has no hospital.
type DoctorScope struct {
	DoctorName   string
	HospitalName string
}

// DashboardStats are the headline counters of a doctor's dashboard.
type DashboardStats struct {
	TotalPatients  int `json:"total_patients"`
	CriticalAlerts int `json:"critical_alerts"`
	Appointments   int `json:"appointments"`
	PendingReports int `json:"pending_reports"`
}

// ActivityEvent is one raw row behind the activity feed. Subject and Detail
// carry the appointment type and status, or the drug and dosage.
type ActivityEvent struct {
	Kind    string
	Patient string
	Subject string
	Detail  string
	At      time.Time
}

// Activity is one entry of the feed as served to the dashboard.
type Activity struct {
	Type      string    `json:"type"`
	Patient   string    `json:"patient"`
	Desc      string    `json:"desc"`
	Time      time.Time `json:"time"`
	Timestamp float64   `json:"timestamp"`
}

// Dashboard serves the doctor-facing summary views.
type Dashboard struct {
	repo      DashboardRepository
	directory Directory
	now       func() time.Time
}

func NewDashboard(repo DashboardRepository, directory Directory) *Dashboard {
	return &Dashboard{repo: repo, directory: directory, now: time.Now}
}

func (d *Dashboard) scope(ctx context.Context, callerID uuid.UUID) (DoctorScope, error) {
	u, err := d.directory.GetUser(ctx, callerID)
	if err != nil {
		return DoctorScope{}, err
	}
	if u.Role != auth.RoleDoctor {
		return DoctorScope{}, ErrNotDoctor
	}
	s := DoctorScope{DoctorName: u.FullName}
	if u.HospitalName != nil {
		s.HospitalName = *u.HospitalName
	}
	return s, nil
}

// Stats counts the caller's patients, emergency visits, appointments from
// the start of today onward, and lab results still pending.
func (d *Dashboard) Stats(ctx context.Context, callerID uuid.UUID) (*DashboardStats, error) {
	scope, err := d.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	y, m, day := d.now().UTC().Date()
	return d.repo.Stats(ctx, scope, time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

// RecentActivity merges new registrations, appointments and prescriptions
// into one feed, newest first.
func (d *Dashboard) RecentActivity(ctx context.Context, callerID uuid.UUID) ([]Activity, error) {
	scope, err := d.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	events, err := d.repo.RecentEvents(ctx, scope, activityPerKind)
	if err != nil {
		return nil, err
	}

	feed := make([]Activity, 0, len(events))
	for _, ev := range events {
		a := Activity{Patient: ev.Patient, Time: ev.At}
		if a.Patient == "" {
			a.Patient = "Unknown"
		}
		if !ev.At.IsZero() {
			a.Timestamp = float64(ev.At.UnixMilli()) / 1000
		}
		switch ev.Kind {
		case EventRegistration:
			a.Type = "alert"
			a.Desc = "New patient registered"
		case EventAppointment:
			a.Type = "appointment"
			a.Desc = fmt.Sprintf("%s appointment (%s)", ev.Subject, ev.Detail)
		case EventPrescription:
			a.Type = "report"
			a.Desc = fmt.Sprintf("Prescribed: %s (%s)", ev.Subject, ev.Detail)
		default:
			continue
		}
		feed = append(feed, a)
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Timestamp > feed[j].Timestamp })
	if len(feed) > activityLimit {
		feed = feed[:activityLimit]
	}
	return feed, nil
}
