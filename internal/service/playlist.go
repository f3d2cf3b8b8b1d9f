package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

// PlaylistService defines playlist operations.
type PlaylistService interface {
	// Create makes a new empty playlist.
	Create(ctx context.Context, callerID uuid.UUID, name, description string) (*model.Playlist, error)
	// Get loads a playlist with its videos.
	Get(ctx context.Context, id uuid.UUID) (*model.Playlist, error)
	// ListByChannel returns a page of the named channel's playlists.
	ListByChannel(ctx context.Context, username string, page model.Page) (*model.Paginated[model.Playlist], error)
	// Update edits name and description. Owner only.
	Update(ctx context.Context, callerID, id uuid.UUID, name, description string) (*model.Playlist, error)
	// Delete removes a playlist. Owner only.
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	// AddVideo links an existing video into the playlist. Owner only.
	AddVideo(ctx context.Context, callerID, id, videoID uuid.UUID) error
	// RemoveVideo unlinks a video from the playlist. Owner only.
	RemoveVideo(ctx context.Context, callerID, id, videoID uuid.UUID) error
}

type PlaylistServiceImpl struct {
	playlists repository.PlaylistRepository
	videos    repository.VideoRepository
	users     repository.UserRepository
}

// NewPlaylistService constructs PlaylistService with required dependencies.
func NewPlaylistService(playlists repository.PlaylistRepository, videos repository.VideoRepository, users repository.UserRepository) *PlaylistServiceImpl {
	return &PlaylistServiceImpl{playlists: playlists, videos: videos, users: users}
}

// Create makes a new empty playlist.
func (s *PlaylistServiceImpl) Create(ctx context.Context, callerID uuid.UUID, name, description string) (*model.Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty playlist name", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.Playlist{ID: id, OwnerID: callerID, Name: name, Description: description}
	if err := s.playlists.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.playlists.GetByID(ctx, id)
}

// Get loads a playlist with its videos.
func (s *PlaylistServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	return s.playlists.GetByID(ctx, id)
}

// ListByChannel resolves the channel by username and returns its playlists.
func (s *PlaylistServiceImpl) ListByChannel(ctx context.Context, username string, page model.Page) (*model.Paginated[model.Playlist], error) {
	owner, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return nil, err
	}
	return s.playlists.ListByOwner(ctx, owner.ID, page)
}

// Update edits a playlist after an ownership check.
func (s *PlaylistServiceImpl) Update(ctx context.Context, callerID, id uuid.UUID, name, description string) (*model.Playlist, error) {
	p, err := s.mustOwn(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	if err := s.playlists.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.playlists.GetByID(ctx, id)
}

// Delete removes a playlist after an ownership check.
func (s *PlaylistServiceImpl) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.mustOwn(ctx, callerID, id); err != nil {
		return err
	}
	return s.playlists.Delete(ctx, id)
}

// AddVideo links an existing video after an ownership check on the playlist.
func (s *PlaylistServiceImpl) AddVideo(ctx context.Context, callerID, id, videoID uuid.UUID) error {
	if _, err := s.mustOwn(ctx, callerID, id); err != nil {
		return err
	}
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		return err
	}
	return s.playlists.AddVideo(ctx, id, videoID)
}

// RemoveVideo unlinks a video after an ownership check on the playlist.
func (s *PlaylistServiceImpl) RemoveVideo(ctx context.Context, callerID, id, videoID uuid.UUID) error {
	if _, err := s.mustOwn(ctx, callerID, id); err != nil {
		return err
	}
	removed, err := s.playlists.RemoveVideo(ctx, id, videoID)
	if err != nil {
		return err
	}
	if !removed {
		return errs.ErrNotFound
	}
	return nil
}

func (s *PlaylistServiceImpl) mustOwn(ctx context.Context, callerID, id uuid.UUID) (*model.Playlist, error) {
	p, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != callerID {
		return nil, errs.ErrForbidden
	}
	return p, nil
}
