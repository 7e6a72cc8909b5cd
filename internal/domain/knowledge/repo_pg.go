package knowledge

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medhub/medhub/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, p *Passage) error {
	p.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO knowledge_passages (id, source, content)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		p.ID, p.Source, p.Content,
	).Scan(&p.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Passage, error) {
	var p Passage
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, source, content, created_at FROM knowledge_passages WHERE id = $1`, id,
	).Scan(&p.ID, &p.Source, &p.Content, &p.CreatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &p, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM knowledge_passages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Search ranks passages against query with Postgres full-text search.
func (r *repoPG) Search(ctx context.Context, query string, limit int) ([]*Hit, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, source, content, created_at, ts_rank(search, q) AS rank
		FROM knowledge_passages, plainto_tsquery('english', $1) q
		WHERE search @@ q
		ORDER BY rank DESC, created_at DESC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []*Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Source, &h.Content, &h.CreatedAt, &h.Rank); err != nil {
			return nil, err
		}
		hits = append(hits, &h)
	}
	return hits, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_passages`).Scan(&n)
	return n, err
}
