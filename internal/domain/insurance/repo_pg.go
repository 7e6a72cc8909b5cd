package insurance

import (
	"context"

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

// -- Policy Repository --

type policyRepoPG struct {
	pool *pgxpool.Pool
}

func NewPolicyRepo(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepoPG{pool: pool}
}

const policyCols = `id, user_id, policy_number, insurance_company, policy_type, coverage_start, coverage_end,
	premium_amount, deductible_amount, deductible_met, coverage_details, is_active, created_at, updated_at`

func (r *policyRepoPG) Create(ctx context.Context, p *Policy) error {
	p.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO insurance_policies (
			id, user_id, policy_number, insurance_company, policy_type, coverage_start, coverage_end,
			premium_amount, deductible_amount, deductible_met, coverage_details, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		p.ID, p.UserID, p.PolicyNumber, p.InsuranceCompany, p.PolicyType, p.CoverageStart, p.CoverageEnd,
		p.PremiumAmount, p.DeductibleAmount, p.DeductibleMet, p.CoverageDetails, p.IsActive,
	).Scan(&p.CreatedAt)
}

func (r *policyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Policy, error) {
	p, err := scanPolicy(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+policyCols+` FROM insurance_policies WHERE id = $1`, id))
	return p, db.NotFound(err)
}

func (r *policyRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	q := db.Conn(ctx, r.pool)
	total, err := countByUser(ctx, q, "insurance_policies", userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+policyCols+` FROM insurance_policies WHERE user_id = $1 ORDER BY is_active DESC, coverage_end DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func scanPolicy(row pgx.Row) (*Policy, error) {
	var p Policy
	err := row.Scan(
		&p.ID, &p.UserID, &p.PolicyNumber, &p.InsuranceCompany, &p.PolicyType, &p.CoverageStart, &p.CoverageEnd,
		&p.PremiumAmount, &p.DeductibleAmount, &p.DeductibleMet, &p.CoverageDetails, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- Claim Repository --

type claimRepoPG struct {
	pool *pgxpool.Pool
}

func NewClaimRepo(pool *pgxpool.Pool) ClaimRepository {
	return &claimRepoPG{pool: pool}
}

const claimCols = `id, user_id, policy_id, visit_id, claim_number, claim_amount, approved_amount, status,
	submission_date, processed_date, reason_for_claim, notes, created_at, updated_at`

func (r *claimRepoPG) Create(ctx context.Context, c *Claim) error {
	c.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO claims (
			id, user_id, policy_id, visit_id, claim_number, claim_amount, approved_amount, status,
			submission_date, processed_date, reason_for_claim, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		c.ID, c.UserID, c.PolicyID, c.VisitID, c.ClaimNumber, c.ClaimAmount, c.ApprovedAmount, c.Status,
		c.SubmissionDate, c.ProcessedDate, c.ReasonForClaim, c.Notes,
	).Scan(&c.CreatedAt)
}

func (r *claimRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := scanClaim(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1`, id))
	return c, db.NotFound(err)
}

// Update writes the adjudication fields only; the submitted claim is
// immutable.
func (r *claimRepoPG) Update(ctx context.Context, c *Claim) error {
	return db.NotFound(db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE claims SET
			approved_amount = $2, status = $3, processed_date = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.ApprovedAmount, c.Status, c.ProcessedDate, c.Notes,
	).Scan(&c.UpdatedAt))
}

func (r *claimRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Claim, int, error) {
	q := db.Conn(ctx, r.pool)
	total, err := countByUser(ctx, q, "claims", userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+claimCols+` FROM claims WHERE user_id = $1 ORDER BY submission_date DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(
		&c.ID, &c.UserID, &c.PolicyID, &c.VisitID, &c.ClaimNumber, &c.ClaimAmount, &c.ApprovedAmount, &c.Status,
		&c.SubmissionDate, &c.ProcessedDate, &c.ReasonForClaim, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
