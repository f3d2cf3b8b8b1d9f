package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// LikeRepo implements LikeRepository using PostgreSQL. One row per
// (user, target) pair; partial unique indexes make insert-or-conflict the
// toggle primitive.
type LikeRepo struct{ db *DB }

// NewLikeRepo constructs a like repository.
func NewLikeRepo(db *DB) *LikeRepo { return &LikeRepo{db: db} }

// ToggleVideo flips the caller's like on a video.
func (r *LikeRepo) ToggleVideo(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	return r.toggle(ctx, "video_id", userID, videoID)
}

// ToggleComment flips the caller's like on a comment.
func (r *LikeRepo) ToggleComment(ctx context.Context, userID, commentID uuid.UUID) (bool, error) {
	return r.toggle(ctx, "comment_id", userID, commentID)
}

// TogglePost flips the caller's like on a community post.
func (r *LikeRepo) TogglePost(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	return r.toggle(ctx, "post_id", userID, postID)
}

// toggle deletes an existing like first; if nothing was there, it inserts.
// A concurrent duplicate insert trips the unique index, which reads as the
// like already being present, so the toggle reports false.
func (r *LikeRepo) toggle(ctx context.Context, col string, userID, targetID uuid.UUID) (bool, error) {
	delQ := `DELETE FROM likes WHERE user_id=$1 AND ` + col + `=$2`
	tag, err := r.db.Pool.Exec(ctx, delQ, userID, targetID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return false, err
	}
	insQ := `INSERT INTO likes (id, user_id, ` + col + `) VALUES ($1, $2, $3)`
	if _, err := r.db.Pool.Exec(ctx, insQ, id, userID, targetID); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListLikedVideos returns a page of videos the user has liked, most recent
// like first.
func (r *LikeRepo) ListLikedVideos(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error) {
	page = page.Normalize()

	var total int64
	const countQ = `SELECT count(*) FROM likes WHERE user_id=$1 AND video_id IS NOT NULL`
	if err := r.db.Pool.QueryRow(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, err
	}

	const listQ = `
SELECT ` + videoColumns + `
FROM likes l
JOIN videos v ON v.id = l.video_id
JOIN users u ON u.id = v.owner_id
WHERE l.user_id=$1
ORDER BY l.created_at DESC
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

// CountForOwner returns the total likes across all of the owner's videos.
func (r *LikeRepo) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	const q = `
SELECT count(*)
FROM likes l JOIN videos v ON v.id = l.video_id
WHERE v.owner_id=$1`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
