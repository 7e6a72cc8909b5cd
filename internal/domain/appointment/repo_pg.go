package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medhub/medhub/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const appointmentCols = `id, user_id, doctor_name, specialty, hospital_clinic, location, consultation_mode,
	appointment_date, appointment_type, reason, status, notes, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO appointments (
			id, user_id, doctor_name, specialty, hospital_clinic, location, consultation_mode,
			appointment_date, appointment_type, reason, status, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		a.ID, a.UserID, a.DoctorName, a.Specialty, a.HospitalClinic, a.Location, a.ConsultationMode,
		a.AppointmentDate, a.AppointmentType, a.Reason, a.Status, a.Notes,
	).Scan(&a.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	return a, db.NotFound(err)
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	return db.NotFound(db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE appointments SET
			doctor_name = $2, specialty = $3, hospital_clinic = $4, location = $5, consultation_mode = $6,
			appointment_date = $7, appointment_type = $8, reason = $9, status = $10, notes = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.DoctorName, a.Specialty, a.HospitalClinic, a.Location, a.ConsultationMode,
		a.AppointmentDate, a.AppointmentType, a.Reason, a.Status, a.Notes,
	).Scan(&a.UpdatedAt))
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, "user_id = $1", []interface{}{userID}, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Appointment, int, error) {
	where := []string{"doctor_name ILIKE '%' || $1 || '%'"}
	args := []interface{}{f.DoctorName}
	if f.HospitalClinic != "" {
		args = append(args, f.HospitalClinic)
		where = append(where, fmt.Sprintf("hospital_clinic = $%d", len(args)))
	}
	return r.list(ctx, strings.Join(where, " AND "), args, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Appointment, int, error) {
	q := db.Conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY appointment_date DESC LIMIT $%d OFFSET $%d`,
		appointmentCols, where, n+1, n+2)
	rows, err := q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.UserID, &a.DoctorName, &a.Specialty, &a.HospitalClinic, &a.Location, &a.ConsultationMode,
		&a.AppointmentDate, &a.AppointmentType, &a.Reason, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
