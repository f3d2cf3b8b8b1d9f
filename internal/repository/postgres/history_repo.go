package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// HistoryRepo implements HistoryRepository using PostgreSQL. One row per
// (user, video) pair; a re-watch only refreshes the timestamp, so the
// history never holds duplicates.
type HistoryRepo struct{ db *DB }

// NewHistoryRepo constructs a watch history repository.
func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Record upserts the watch entry for the pair.
func (r *HistoryRepo) Record(ctx context.Context, userID, videoID uuid.UUID) error {
	const q = `
INSERT INTO watch_history (user_id, video_id)
VALUES ($1, $2)
ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = now()`
	_, err := r.db.Pool.Exec(ctx, q, userID, videoID)
	return err
}

// ListForUser returns a page of the user's watched videos, most recent
// watch first.
func (r *HistoryRepo) ListForUser(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error) {
	page = page.Normalize()

	var total int64
	const countQ = `SELECT count(*) FROM watch_history WHERE user_id=$1`
	if err := r.db.Pool.QueryRow(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, err
	}

	const listQ = `
SELECT ` + videoColumns + `
FROM watch_history h
JOIN videos v ON v.id = h.video_id
JOIN users u ON u.id = v.owner_id
WHERE h.user_id=$1
ORDER BY h.watched_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, listQ, userID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.Paginated[model.Video]{
		Items: items, Page: page.Number, Limit: page.Size, TotalItems: total,
	}, nil
}
