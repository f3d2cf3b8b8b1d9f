package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// PostRepository provides community post storage.
type PostRepository interface {
	// Create inserts a new post.
	Create(ctx context.Context, p *model.CommunityPost) error
	// GetByID loads a post with like totals computed for the viewer.
	// viewerID may be uuid.Nil for anonymous readers.
	GetByID(ctx context.Context, id, viewerID uuid.UUID) (*model.CommunityPost, error)
	// ListByOwner returns a page of a channel's posts, newest first, with
	// like totals computed for the viewer.
	ListByOwner(ctx context.Context, ownerID, viewerID uuid.UUID, page model.Page) (*model.Paginated[model.CommunityPost], error)
	// UpdateContent replaces the post text.
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	// Delete removes a post.
	Delete(ctx context.Context, id uuid.UUID) error
}
