package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medhub/medhub/internal/platform/db"
)

// -- User Repository --

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, email, full_name, role, date_of_birth, phone,
	emergency_contact_name, emergency_contact_phone, blood_type, height_cm, weight_kg,
	is_verified, hospital_name, hospital_state, hospital_city, created_at, updated_at`

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (
			id, email, full_name, role, date_of_birth, phone,
			emergency_contact_name, emergency_contact_phone, blood_type, height_cm, weight_kg,
			is_verified, hospital_name, hospital_state, hospital_city
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at`,
		u.ID, u.Email, u.FullName, u.Role, u.DateOfBirth, u.Phone,
		u.EmergencyContactName, u.EmergencyContactPhone, u.BloodType, u.HeightCM, u.WeightKG,
		u.IsVerified, u.HospitalName, u.HospitalState, u.HospitalCity,
	).Scan(&u.CreatedAt)
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	return u, db.NotFound(err)
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email))
	return u, db.NotFound(err)
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET
			full_name=$2, date_of_birth=$3, phone=$4,
			emergency_contact_name=$5, emergency_contact_phone=$6, blood_type=$7,
			height_cm=$8, weight_kg=$9, is_verified=$10,
			hospital_name=$11, hospital_state=$12, hospital_city=$13, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.FullName, u.DateOfBirth, u.Phone,
		u.EmergencyContactName, u.EmergencyContactPhone, u.BloodType,
		u.HeightCM, u.WeightKG, u.IsVerified,
		u.HospitalName, u.HospitalState, u.HospitalCity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *userRepoPG) List(ctx context.Context, f UserFilter, limit, offset int) ([]*User, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.HospitalName != "" {
		args = append(args, f.HospitalName)
		where = append(where, fmt.Sprintf("hospital_name = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+userCols+` FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.DateOfBirth, &u.Phone,
		&u.EmergencyContactName, &u.EmergencyContactPhone, &u.BloodType, &u.HeightCM, &u.WeightKG,
		&u.IsVerified, &u.HospitalName, &u.HospitalState, &u.HospitalCity, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `d.id, d.user_id, d.specialty, d.license_number, d.years_of_experience,
	d.hospital_affiliation, d.bio, d.hospital_name, d.hospital_state, d.hospital_city, u.full_name`

const doctorFrom = ` FROM doctors d JOIN users u ON u.id = d.user_id`

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO doctors (
			id, user_id, specialty, license_number, years_of_experience,
			hospital_affiliation, bio, hospital_name, hospital_state, hospital_city
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.UserID, d.Specialty, d.LicenseNumber, d.YearsOfExperience,
		d.HospitalAffiliation, d.Bio, d.HospitalName, d.HospitalState, d.HospitalCity,
	)
	return err
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+doctorCols+doctorFrom+` WHERE d.user_id = $1`, userID))
	return d, db.NotFound(err)
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE doctors SET
			specialty=$2, license_number=$3, years_of_experience=$4,
			hospital_affiliation=$5, bio=$6, hospital_name=$7, hospital_state=$8, hospital_city=$9
		WHERE id = $1`,
		d.ID, d.Specialty, d.LicenseNumber, d.YearsOfExperience,
		d.HospitalAffiliation, d.Bio, d.HospitalName, d.HospitalState, d.HospitalCity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, hospitalName string, limit, offset int) ([]*Doctor, int, error) {
	clause := ""
	args := []interface{}{}
	if hospitalName != "" {
		clause = ` WHERE d.hospital_name = $1`
		args = append(args, hospitalName)
	}

	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*)`+doctorFrom+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+doctorCols+doctorFrom+`%s ORDER BY u.full_name LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, d)
	}
	return doctors, total, rows.Err()
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.UserID, &d.Specialty, &d.LicenseNumber, &d.YearsOfExperience,
		&d.HospitalAffiliation, &d.Bio, &d.HospitalName, &d.HospitalState, &d.HospitalCity, &d.FullName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// -- Researcher Repository --

type researcherRepoPG struct {
	pool *pgxpool.Pool
}

func NewResearcherRepo(pool *pgxpool.Pool) ResearcherRepository {
	return &researcherRepoPG{pool: pool}
}

const researcherCols = `id, user_id, institution, field_of_study, publications_count, current_projects`

func (r *researcherRepoPG) Create(ctx context.Context, res *Researcher) error {
	res.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO researchers (id, user_id, institution, field_of_study, publications_count, current_projects)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		res.ID, res.UserID, res.Institution, res.FieldOfStudy, res.PublicationsCount, res.CurrentProjects,
	)
	return err
}

func (r *researcherRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Researcher, error) {
	res, err := scanResearcher(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+researcherCols+` FROM researchers WHERE user_id = $1`, userID))
	return res, db.NotFound(err)
}

func (r *researcherRepoPG) Update(ctx context.Context, res *Researcher) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE researchers SET institution=$2, field_of_study=$3, publications_count=$4, current_projects=$5
		WHERE id = $1`,
		res.ID, res.Institution, res.FieldOfStudy, res.PublicationsCount, res.CurrentProjects,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *researcherRepoPG) List(ctx context.Context, limit, offset int) ([]*Researcher, int, error) {
	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM researchers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+researcherCols+` FROM researchers ORDER BY institution LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var researchers []*Researcher
	for rows.Next() {
		res, err := scanResearcher(rows)
		if err != nil {
			return nil, 0, err
		}
		researchers = append(researchers, res)
	}
	return researchers, total, rows.Err()
}

func scanResearcher(row pgx.Row) (*Researcher, error) {
	var res Researcher
	if err := row.Scan(&res.ID, &res.UserID, &res.Institution, &res.FieldOfStudy, &res.PublicationsCount, &res.CurrentProjects); err != nil {
		return nil, err
	}
	return &res, nil
}

// -- Patient Profile Repository --

type patientProfileRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientProfileRepo(pool *pgxpool.Pool) PatientProfileRepository {
	return &patientProfileRepoPG{pool: pool}
}

const patientProfileCols = `user_id, gender, address, marital_status, occupation, preferred_language,
	chronic_conditions, past_surgeries, family_history, current_medications, smoking_status, alcohol_use,
	created_at, updated_at`

func (r *patientProfileRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*PatientProfile, error) {
	var p PatientProfile
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+patientProfileCols+` FROM patient_profiles WHERE user_id = $1`, userID).Scan(
		&p.UserID, &p.Gender, &p.Address, &p.MaritalStatus, &p.Occupation, &p.PreferredLanguage,
		&p.ChronicConditions, &p.PastSurgeries, &p.FamilyHistory, &p.CurrentMedications, &p.SmokingStatus, &p.AlcoholUse,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &p, nil
}

func (r *patientProfileRepoPG) Upsert(ctx context.Context, p *PatientProfile) error {
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO patient_profiles (
			user_id, gender, address, marital_status, occupation, preferred_language,
			chronic_conditions, past_surgeries, family_history, current_medications, smoking_status, alcohol_use
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (user_id) DO UPDATE SET
			gender = EXCLUDED.gender, address = EXCLUDED.address, marital_status = EXCLUDED.marital_status,
			occupation = EXCLUDED.occupation, preferred_language = EXCLUDED.preferred_language,
			chronic_conditions = EXCLUDED.chronic_conditions, past_surgeries = EXCLUDED.past_surgeries,
			family_history = EXCLUDED.family_history, current_medications = EXCLUDED.current_medications,
			smoking_status = EXCLUDED.smoking_status, alcohol_use = EXCLUDED.alcohol_use,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		p.UserID, p.Gender, p.Address, p.MaritalStatus, p.Occupation, p.PreferredLanguage,
		p.ChronicConditions, p.PastSurgeries, p.FamilyHistory, p.CurrentMedications, p.SmokingStatus, p.AlcoholUse,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}
