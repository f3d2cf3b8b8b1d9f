package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// FollowRepository provides the follow graph. The (follower, following)
// pair is unique at the storage level.
type FollowRepository interface {
	// Follow inserts an edge. A duplicate maps to errs.ErrAlreadyExists.
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	// Unfollow removes an edge and reports whether it existed.
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	// Exists reports whether follower currently follows following.
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	// ListFollowers returns a page of accounts following userID.
	ListFollowers(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.FollowEntry], error)
	// ListFollowing returns a page of accounts userID follows.
	ListFollowing(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.FollowEntry], error)
	// CountFollowers returns the follower total for userID.
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
	// CountFollowing returns how many accounts userID follows.
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
}
