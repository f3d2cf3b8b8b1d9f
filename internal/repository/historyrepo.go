package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// HistoryRepository records which videos a user has watched.
type HistoryRepository interface {
	// Record upserts a watch entry; a re-watch refreshes its timestamp.
	Record(ctx context.Context, userID, videoID uuid.UUID) error
	// ListForUser returns a page of the user's watched videos, most recent
	// watch first.
	ListForUser(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error)
}
