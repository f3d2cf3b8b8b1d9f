package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// VideoFilter bounds a video listing.
type VideoFilter struct {
	// OwnerID limits the listing to one channel when non-nil.
	OwnerID uuid.UUID
	// Query is a case-insensitive match against title and description.
	Query string
	// SortBy is one of created_at, views, duration, title.
	SortBy string
	// SortDesc orders newest/largest first when true.
	SortDesc bool
	// OnlyPublished hides drafts from everyone but the owner.
	OnlyPublished bool
	Page          model.Page
}

// VideoRepository provides video storage.
type VideoRepository interface {
	// Create inserts a new video.
	Create(ctx context.Context, v *model.Video) error
	// GetByID loads a video with its owner joined in.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error)
	// List returns a page of videos matching the filter.
	List(ctx context.Context, f VideoFilter) (*model.Paginated[model.Video], error)
	// Update persists title, description and thumbnail changes.
	Update(ctx context.Context, v *model.Video) error
	// Delete removes a video and its dependent rows.
	Delete(ctx context.Context, id uuid.UUID) error
	// TogglePublish flips the publish flag and returns the new state.
	TogglePublish(ctx context.Context, id uuid.UUID) (bool, error)
	// IncrementViews bumps the view counter by one.
	IncrementViews(ctx context.Context, id uuid.UUID) error
	// CountByOwner returns the owner's video and cumulative view totals.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (videos, views int64, err error)
}
