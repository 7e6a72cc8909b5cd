package inbox

import (
	"context"

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

const notificationCols = `id, user_id, title, message, type, link, is_read, created_at`

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, link, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.Link, n.IsRead,
	).Scan(&n.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := scanNotification(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+notificationCols+` FROM notifications WHERE id = $1`, id))
	return n, db.NotFound(err)
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	q := db.Conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `SELECT `+notificationCols+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	return n, err
}

func (r *repoPG) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := scanNotification(db.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 RETURNING `+notificationCols, id))
	return n, db.NotFound(err)
}

func (r *repoPG) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
