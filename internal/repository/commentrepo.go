package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// CommentRepository provides comment storage. A comment belongs to exactly
// one of a video or a community post.
type CommentRepository interface {
	// Create inserts a new comment.
	Create(ctx context.Context, c *model.Comment) error
	// GetByID loads a comment by id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	// ListByVideo returns a page of a video's comments, newest first.
	ListByVideo(ctx context.Context, videoID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error)
	// ListByPost returns a page of a community post's comments, newest first.
	ListByPost(ctx context.Context, postID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error)
	// UpdateContent replaces the comment text.
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	// Delete removes a comment.
	Delete(ctx context.Context, id uuid.UUID) error
}
