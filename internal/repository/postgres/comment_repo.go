package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
)

// CommentRepo implements CommentRepository using PostgreSQL. Exactly one of
// video_id and post_id is set per row, enforced by a CHECK constraint.
type CommentRepo struct{ db *DB }

// NewCommentRepo constructs a comment repository.
func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

const commentColumns = `
c.id, c.owner_id, c.video_id, c.post_id, c.content, c.created_at, c.updated_at,
u.id, u.username, u.name, u.profile_image`

func scanComment(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	var owner model.UserRef
	var videoID, postID uuid.NullUUID
	err := row.Scan(
		&c.ID, &c.OwnerID, &videoID, &postID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&owner.ID, &owner.Username, &owner.Name, &owner.ProfileImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	c.VideoID = videoID.UUID
	c.PostID = postID.UUID
	c.Owner = &owner
	return &c, nil
}

// Create inserts a new comment row.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	const q = `
INSERT INTO comments (id, owner_id, video_id, post_id, content)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q,
		c.ID, c.OwnerID, nullableID(c.VideoID), nullableID(c.PostID), c.Content)
	return err
}

// GetByID selects a comment with its owner joined in.
func (r *CommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	const q = `
SELECT ` + commentColumns + `
FROM comments c JOIN users u ON u.id = c.owner_id
WHERE c.id=$1`
	return scanComment(r.db.Pool.QueryRow(ctx, q, id))
}

// ListByVideo returns a page of a video's comments, newest first.
func (r *CommentRepo) ListByVideo(ctx context.Context, videoID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error) {
	return r.list(ctx, "video_id", videoID, page)
}

// ListByPost returns a page of a community post's comments, newest first.
func (r *CommentRepo) ListByPost(ctx context.Context, postID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error) {
	return r.list(ctx, "post_id", postID, page)
}

func (r *CommentRepo) list(ctx context.Context, col string, parent uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error) {
	page = page.Normalize()

	var total int64
	countQ := `SELECT count(*) FROM comments c WHERE c.` + col + `=$1`
	if err := r.db.Pool.QueryRow(ctx, countQ, parent).Scan(&total); err != nil {
		return nil, err
	}

	listQ := `
SELECT ` + commentColumns + `
FROM comments c JOIN users u ON u.id = c.owner_id
WHERE c.` + col + `=$1
ORDER BY c.created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, listQ, parent, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.Paginated[model.Comment]{
		Items: items, Page: page.Number, Limit: page.Size, TotalItems: total,
	}, nil
}

// UpdateContent replaces the comment text.
func (r *CommentRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	const q = `UPDATE comments SET content=$2, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a comment.
func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM comments WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// nullableID maps uuid.Nil to SQL NULL.
func nullableID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
