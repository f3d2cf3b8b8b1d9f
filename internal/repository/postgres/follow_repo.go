package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
)

// FollowRepo implements FollowRepository using PostgreSQL. The unique index
// on (follower_id, following_id) makes concurrent follows race-safe.
type FollowRepo struct{ db *DB }

// NewFollowRepo constructs a follow repository.
func NewFollowRepo(db *DB) *FollowRepo { return &FollowRepo{db: db} }

// Follow inserts an edge into the follow graph.
func (r *FollowRepo) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	const q = `INSERT INTO follows (id, follower_id, following_id) VALUES ($1, $2, $3)`
	_, err = r.db.Pool.Exec(ctx, q, id, followerID, followingID)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Unfollow removes an edge and reports whether it existed.
func (r *FollowRepo) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	const q = `DELETE FROM follows WHERE follower_id=$1 AND following_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, followerID, followingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether follower currently follows following.
func (r *FollowRepo) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id=$1 AND following_id=$2)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, followerID, followingID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListFollowers returns a page of accounts following userID.
func (r *FollowRepo) ListFollowers(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.FollowEntry], error) {
	const q = `
SELECT u.id, u.username, u.name, u.profile_image, f.created_at
FROM follows f JOIN users u ON u.id = f.follower_id
WHERE f.following_id=$1
ORDER BY f.created_at DESC
LIMIT $2 OFFSET $3`
	const countQ = `SELECT count(*) FROM follows WHERE following_id=$1`
	return r.listEntries(ctx, q, countQ, userID, page)
}

// ListFollowing returns a page of accounts userID follows.
func (r *FollowRepo) ListFollowing(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.FollowEntry], error) {
	const q = `
SELECT u.id, u.username, u.name, u.profile_image, f.created_at
FROM follows f JOIN users u ON u.id = f.following_id
WHERE f.follower_id=$1
ORDER BY f.created_at DESC
LIMIT $2 OFFSET $3`
	const countQ = `SELECT count(*) FROM follows WHERE follower_id=$1`
	return r.listEntries(ctx, q, countQ, userID, page)
}

// CountFollowers returns the follower total for userID.
func (r *FollowRepo) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	const q = `SELECT count(*) FROM follows WHERE following_id=$1`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountFollowing returns how many accounts userID follows.
func (r *FollowRepo) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	const q = `SELECT count(*) FROM follows WHERE follower_id=$1`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *FollowRepo) listEntries(ctx context.Context, listQ, countQ string, userID uuid.UUID, page model.Page) (*model.Paginated[model.FollowEntry], error) {
	page = page.Normalize()

	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, listQ, userID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.FollowEntry{}
	for rows.Next() {
		var e model.FollowEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Name, &e.ProfileImage, &e.FollowedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.Paginated[model.FollowEntry]{
		Items: items, Page: page.Number, Limit: page.Size, TotalItems: total,
	}, nil
}
