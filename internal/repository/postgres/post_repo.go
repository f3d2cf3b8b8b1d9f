package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
)

// PostRepo implements PostRepository using PostgreSQL. Like totals and the
// viewer's own like state are computed in the query so listings stay a
// single round trip.
type PostRepo struct{ db *DB }

// NewPostRepo constructs a community post repository.
func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const postColumns = `
p.id, p.owner_id, p.content, p.created_at, p.updated_at,
u.id, u.username, u.name, u.profile_image,
(SELECT count(*) FROM likes l WHERE l.post_id = p.id),
EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1)`

func scanPost(row pgx.Row) (*model.CommunityPost, error) {
	var p model.CommunityPost
	var owner model.UserRef
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Content, &p.CreatedAt, &p.UpdatedAt,
		&owner.ID, &owner.Username, &owner.Name, &owner.ProfileImage,
		&p.LikesCount, &p.IsLiked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	p.Owner = &owner
	return &p, nil
}

// Create inserts a new post row.
func (r *PostRepo) Create(ctx context.Context, p *model.CommunityPost) error {
	const q = `INSERT INTO community_posts (id, owner_id, content) VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.OwnerID, p.Content)
	return err
}

// GetByID selects a post with like totals for the viewer.
func (r *PostRepo) GetByID(ctx context.Context, id, viewerID uuid.UUID) (*model.CommunityPost, error) {
	const q = `
SELECT ` + postColumns + `
FROM community_posts p JOIN users u ON u.id = p.owner_id
WHERE p.id=$2`
	return scanPost(r.db.Pool.QueryRow(ctx, q, viewerID, id))
}

// ListByOwner returns a page of a channel's posts, newest first.
func (r *PostRepo) ListByOwner(ctx context.Context, ownerID, viewerID uuid.UUID, page model.Page) (*model.Paginated[model.CommunityPost], error) {
	page = page.Normalize()

	var total int64
	const countQ = `SELECT count(*) FROM community_posts WHERE owner_id=$1`
	if err := r.db.Pool.QueryRow(ctx, countQ, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const listQ = `
SELECT ` + postColumns + `
FROM community_posts p JOIN users u ON u.id = p.owner_id
WHERE p.owner_id=$2
ORDER BY p.created_at DESC
LIMIT $3 OFFSET $4`
	rows, err := r.db.Pool.Query(ctx, listQ, viewerID, ownerID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.CommunityPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.Paginated[model.CommunityPost]{
		Items: items, Page: page.Number, Limit: page.Size, TotalItems: total,
	}, nil
}

// UpdateContent replaces the post text.
func (r *PostRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	const q = `UPDATE community_posts SET content=$2, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a post.
func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM community_posts WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
