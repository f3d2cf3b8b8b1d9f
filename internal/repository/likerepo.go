package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// LikeRepository provides likes on videos, comments and community posts.
// Each (user, target) pair is unique at the storage level, so toggling is
// race-safe.
type LikeRepository interface {
	// ToggleVideo flips the caller's like on a video and returns the new state.
	ToggleVideo(ctx context.Context, userID, videoID uuid.UUID) (liked bool, err error)
	// ToggleComment flips the caller's like on a comment.
	ToggleComment(ctx context.Context, userID, commentID uuid.UUID) (liked bool, err error)
	// TogglePost flips the caller's like on a community post.
	TogglePost(ctx context.Context, userID, postID uuid.UUID) (liked bool, err error)
	// ListLikedVideos returns a page of videos the user has liked.
	ListLikedVideos(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error)
	// CountForOwner returns the total likes across all of the owner's videos.
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
