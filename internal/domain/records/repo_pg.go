package records

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medhub/medhub/internal/platform/db"
)

func countByUser(ctx context.Context, q db.Querier, table string, userID uuid.UUID) (int, error) {
	var total int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE user_id = $1`, userID).Scan(&total)
	return total, err
}

// -- Hospital Visit Repository --

type visitRepoPG struct {
	pool *pgxpool.Pool
}

func NewVisitRepo(pool *pgxpool.Pool) VisitRepository {
	return &visitRepoPG{pool: pool}
}

const visitCols = `id, user_id, hospital_name, hospital_address, department, admission_date, discharge_date,
	visit_type, primary_doctor, diagnosis, treatment_summary, cost, insurance_claim_status, created_at`

func (r *visitRepoPG) Create(ctx context.Context, v *HospitalVisit) error {
	v.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO hospital_visits (
			id, user_id, hospital_name, hospital_address, department, admission_date, discharge_date,
			visit_type, primary_doctor, diagnosis, treatment_summary, cost, insurance_claim_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at`,
		v.ID, v.UserID, v.HospitalName, v.HospitalAddress, v.Department, v.AdmissionDate, v.DischargeDate,
		v.VisitType, v.PrimaryDoctor, v.Diagnosis, v.TreatmentSummary, v.Cost, v.InsuranceClaimStatus,
	).Scan(&v.CreatedAt)
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HospitalVisit, error) {
	v, err := scanVisit(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+visitCols+` FROM hospital_visits WHERE id = $1`, id))
	return v, db.NotFound(err)
}

func (r *visitRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*HospitalVisit, int, error) {
	q := db.Conn(ctx, r.pool)
	total, err := countByUser(ctx, q, "hospital_visits", userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+visitCols+` FROM hospital_visits WHERE user_id = $1 ORDER BY admission_date DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var visits []*HospitalVisit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}

func scanVisit(row pgx.Row) (*HospitalVisit, error) {
	var v HospitalVisit
	err := row.Scan(
		&v.ID, &v.UserID, &v.HospitalName, &v.HospitalAddress, &v.Department, &v.AdmissionDate, &v.DischargeDate,
		&v.VisitType, &v.PrimaryDoctor, &v.Diagnosis, &v.TreatmentSummary, &v.Cost, &v.InsuranceClaimStatus, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// -- Prescription Repository --

type prescriptionRepoPG struct {
	pool *pgxpool.Pool
}

func NewPrescriptionRepo(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const prescriptionCols = `id, user_id, visit_id, drug_name, dosage, frequency, start_date, end_date,
	refills_remaining, side_effects, special_instructions, prescribing_doctor, pharmacy, status,
	document_url, created_at`

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO prescriptions (
			id, user_id, visit_id, drug_name, dosage, frequency, start_date, end_date,
			refills_remaining, side_effects, special_instructions, prescribing_doctor, pharmacy, status,
			document_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at`,
		p.ID, p.UserID, p.VisitID, p.DrugName, p.Dosage, p.Frequency, p.StartDate, p.EndDate,
		p.RefillsRemaining, p.SideEffects, p.SpecialInstructions, p.PrescribingDoctor, p.Pharmacy, p.Status,
		p.DocumentURL,
	).Scan(&p.CreatedAt)
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := scanPrescription(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+prescriptionCols+` FROM prescriptions WHERE id = $1`, id))
	return p, db.NotFound(err)
}

func (r *prescriptionRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	q := db.Conn(ctx, r.pool)
	total, err := countByUser(ctx, q, "prescriptions", userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+prescriptionCols+` FROM prescriptions WHERE user_id = $1 ORDER BY start_date DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(
		&p.ID, &p.UserID, &p.VisitID, &p.DrugName, &p.Dosage, &p.Frequency, &p.StartDate, &p.EndDate,
		&p.RefillsRemaining, &p.SideEffects, &p.SpecialInstructions, &p.PrescribingDoctor, &p.Pharmacy, &p.Status,
		&p.DocumentURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- Allergy Repository --

type allergyRepoPG struct {
	pool *pgxpool.Pool
}

func NewAllergyRepo(pool *pgxpool.Pool) AllergyRepository {
	return &allergyRepoPG{pool: pool}
}

const allergyCols = `id, user_id, allergen_name, allergen_type, severity, reaction_symptoms,
	treatment_protocol, first_observed, last_reaction, created_at`

func (r *allergyRepoPG) Create(ctx context.Context, a *Allergy) error {
	a.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO allergies (
			id, user_id, allergen_name, allergen_type, severity, reaction_symptoms,
			treatment_protocol, first_observed, last_reaction
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		a.ID, a.UserID, a.AllergenName, a.AllergenType, a.Severity, a.ReactionSymptoms,
		a.TreatmentProtocol, a.FirstObserved, a.LastReaction,
	).Scan(&a.CreatedAt)
}

func (r *allergyRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Allergy, int, error) {
	q := db.Conn(ctx, r.pool)
	total, err := countByUser(ctx, q, "allergies", userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+allergyCols+` FROM allergies WHERE user_id = $1 ORDER BY first_observed DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Allergy
	for rows.Next() {
		var a Allergy
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.AllergenName, &a.AllergenType, &a.Severity, &a.ReactionSymptoms,
			&a.TreatmentProtocol, &a.FirstObserved, &a.LastReaction, &a.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, &a)
	}
	return out, total, rows.Err()
}

// -- Lab Result Repository --

type labResultRepoPG struct {
	pool *pgxpool.Pool
}

func NewLabResultRepo(pool *pgxpool.Pool) LabResultRepository {
	return &labResultRepoPG{pool: pool}
}

const labResultCols = `id, user_id, visit_id, test_name, test_category, result_value, result_unit,
	reference_range, status, test_date, ordering_doctor, lab_facility, notes, document_url, created_at`

func (r *labResultRepoPG) Create(ctx context.Context, l *LabResult) error {
	l.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lab_results (
			id, user_id, visit_id, test_name, test_category, result_value, result_unit,
			reference_range, status, test_date, ordering_doctor, lab_facility, notes, document_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at`,
		l.ID, l.UserID, l.VisitID, l.TestName, l.TestCategory, l.ResultValue, l.ResultUnit,
		l.ReferenceRange, l.Status, l.TestDate, l.OrderingDoctor, l.LabFacility, l.Notes, l.DocumentURL,
	).Scan(&l.CreatedAt)
}

func (r *labResultRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*LabResult, int, error) {
	q := db.Conn(ctx, r.pool)
	total, err := countByUser(ctx, q, "lab_results", userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+labResultCols+` FROM lab_results WHERE user_id = $1 ORDER BY test_date DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*LabResult
	for rows.Next() {
		var l LabResult
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.VisitID, &l.TestName, &l.TestCategory, &l.ResultValue, &l.ResultUnit,
			&l.ReferenceRange, &l.Status, &l.TestDate, &l.OrderingDoctor, &l.LabFacility, &l.Notes, &l.DocumentURL, &l.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, &l)
	}
	return out, total, rows.Err()
}

// -- Dashboard Repository --

type dashboardRepoPG struct {
	pool *pgxpool.Pool
}

func NewDashboardRepo(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepoPG{pool: pool}
}

func (r *dashboardRepoPG) Stats(ctx context.Context, scope DoctorScope, since time.Time) (*DashboardStats, error) {
	var s DashboardStats
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users
				WHERE role = 'patient' AND ($1::text = '' OR hospital_name = $1)),
			(SELECT COUNT(*) FROM hospital_visits v JOIN users u ON u.id = v.user_id
				WHERE v.visit_type = 'Emergency' AND ($1::text = '' OR u.hospital_name = $1)),
			(SELECT COUNT(*) FROM appointments
				WHERE doctor_name ILIKE '%' || $2 || '%' AND appointment_date >= $3),
			(SELECT COUNT(*) FROM lab_results
				WHERE status = 'Pending' AND ordering_doctor ILIKE '%' || $2 || '%')`,
		scope.HospitalName, scope.DoctorName, since,
	).Scan(&s.TotalPatients, &s.CriticalAlerts, &s.Appointments, &s.PendingReports)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *dashboardRepoPG) RecentEvents(ctx context.Context, scope DoctorScope, perKind int) ([]ActivityEvent, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		(SELECT 'registration', u.full_name, '', '', u.created_at
			FROM users u
			WHERE u.role = 'patient' AND ($1::text = '' OR u.hospital_name = $1)
			ORDER BY u.created_at DESC LIMIT $3)
		UNION ALL
		(SELECT 'appointment', COALESCE(u.full_name, ''), a.appointment_type, a.status, a.appointment_date
			FROM appointments a LEFT JOIN users u ON u.id = a.user_id
			WHERE a.doctor_name ILIKE '%' || $2 || '%'
			ORDER BY a.appointment_date DESC LIMIT $3)
		UNION ALL
		(SELECT 'prescription', COALESCE(u.full_name, ''), p.drug_name, p.dosage, p.created_at
			FROM prescriptions p LEFT JOIN users u ON u.id = p.user_id
			WHERE p.prescribing_doctor ILIKE '%' || $2 || '%'
			ORDER BY p.created_at DESC LIMIT $3)`,
		scope.HospitalName, scope.DoctorName, perKind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityEvent
	for rows.Next() {
		var ev ActivityEvent
		if err := rows.Scan(&ev.Kind, &ev.Patient, &ev.Subject, &ev.Detail, &ev.At); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
