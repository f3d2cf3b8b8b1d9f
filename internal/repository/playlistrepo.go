package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// PlaylistRepository provides playlist storage.
type PlaylistRepository interface {
	// Create inserts a new playlist.
	Create(ctx context.Context, p *model.Playlist) error
	// GetByID loads a playlist together with its videos.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error)
	// ListByOwner returns a page of a user's playlists with video counts.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page model.Page) (*model.Paginated[model.Playlist], error)
	// Update persists name and description changes.
	Update(ctx context.Context, p *model.Playlist) error
	// Delete removes a playlist and its membership rows.
	Delete(ctx context.Context, id uuid.UUID) error
	// AddVideo links a video into the playlist; adding twice is a no-op.
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	// RemoveVideo unlinks a video and reports whether it was present.
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error)
}
