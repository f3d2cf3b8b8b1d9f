package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/media"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

// MediaStore resolves storage keys to presigned URLs. Implemented by
// *media.Storage.
type MediaStore interface {
	NewUpload(ctx context.Context, prefix string) (*media.Upload, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// PublishVideoInput carries a new video. The keys reference objects the
// client already uploaded through presigned PUT URLs.
type PublishVideoInput struct {
	Title       string
	Description string
	VideoKey    string
	ThumbKey    string
	Duration    float64
}

// VideoDetail is a video with its storage keys resolved to playback URLs.
type VideoDetail struct {
	model.Video
	PlayURL  string `json:"playUrl"`
	ThumbURL string `json:"thumbUrl"`
}

// VideoService defines video lifecycle and engagement operations.
type VideoService interface {
	// Publish registers an uploaded video, initially as a draft.
	Publish(ctx context.Context, ownerID uuid.UUID, in PublishVideoInput) (*model.Video, error)
	// Get loads a video for a viewer and counts the view. Drafts are only
	// visible to their owner.
	Get(ctx context.Context, id, viewerID uuid.UUID) (*VideoDetail, error)
	// List returns a page of published videos, optionally scoped to one
	// channel or filtered by a search query.
	List(ctx context.Context, f repository.VideoFilter) (*model.Paginated[model.Video], error)
	// Update edits title, description and thumbnail. Owner only.
	Update(ctx context.Context, callerID, id uuid.UUID, title, description, thumbKey string) (*model.Video, error)
	// Delete removes a video. Owner only.
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	// TogglePublish flips draft/published. Owner only.
	TogglePublish(ctx context.Context, callerID, id uuid.UUID) (bool, error)
	// ToggleLike flips the caller's like and returns the new state.
	ToggleLike(ctx context.Context, callerID, id uuid.UUID) (bool, error)
	// ListLiked returns a page of videos the caller has liked.
	ListLiked(ctx context.Context, callerID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error)
	// History returns a page of videos the caller has watched, most recent
	// watch first.
	History(ctx context.Context, callerID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error)
}

type VideoServiceImpl struct {
	videos  repository.VideoRepository
	likes   repository.LikeRepository
	history repository.HistoryRepository
	store   MediaStore
}

// NewVideoService constructs VideoService with required dependencies.
func NewVideoService(videos repository.VideoRepository, likes repository.LikeRepository, history repository.HistoryRepository, store MediaStore) *VideoServiceImpl {
	return &VideoServiceImpl{videos: videos, likes: likes, history: history, store: store}
}

// Publish registers an uploaded video.
func (s *VideoServiceImpl) Publish(ctx context.Context, ownerID uuid.UUID, in PublishVideoInput) (*model.Video, error) {
	if in.Title == "" || in.VideoKey == "" {
		return nil, fmt.Errorf("%w: title and video key are required", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	v := &model.Video{
		ID:          id,
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		VideoKey:    in.VideoKey,
		ThumbKey:    in.ThumbKey,
		Duration:    in.Duration,
	}
	if err := s.videos.Create(ctx, v); err != nil {
		return nil, err
	}
	return s.videos.GetByID(ctx, id)
}

// Get loads a video and resolves its playback URLs. The view counter is
// bumped for everyone but the owner.
func (s *VideoServiceImpl) Get(ctx context.Context, id, viewerID uuid.UUID) (*VideoDetail, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A draft reads as missing to anyone but its owner.
	if !v.IsPublished && v.OwnerID != viewerID {
		return nil, errs.ErrNotFound
	}
	if v.OwnerID != viewerID {
		if err := s.videos.IncrementViews(ctx, id); err != nil {
			return nil, err
		}
		v.Views++
		// Logged-in viewers leave a watch history entry; anonymous plays
		// only count the view.
		if viewerID != uuid.Nil {
			if err := s.history.Record(ctx, viewerID, id); err != nil {
				return nil, err
			}
		}
	}
	playURL, err := s.store.DownloadURL(ctx, v.VideoKey)
	if err != nil {
		return nil, err
	}
	thumbURL, err := s.store.DownloadURL(ctx, v.ThumbKey)
	if err != nil {
		return nil, err
	}
	return &VideoDetail{Video: *v, PlayURL: playURL, ThumbURL: thumbURL}, nil
}

// List returns a page of published videos.
func (s *VideoServiceImpl) List(ctx context.Context, f repository.VideoFilter) (*model.Paginated[model.Video], error) {
	f.OnlyPublished = true
	return s.videos.List(ctx, f)
}

// Update edits video metadata after an ownership check.
func (s *VideoServiceImpl) Update(ctx context.Context, callerID, id uuid.UUID, title, description, thumbKey string) (*model.Video, error) {
	v, err := s.mustOwn(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		v.Title = title
	}
	if description != "" {
		v.Description = description
	}
	if thumbKey != "" {
		v.ThumbKey = thumbKey
	}
	if err := s.videos.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.videos.GetByID(ctx, id)
}

// Delete removes a video after an ownership check.
func (s *VideoServiceImpl) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.mustOwn(ctx, callerID, id); err != nil {
		return err
	}
	return s.videos.Delete(ctx, id)
}

// TogglePublish flips draft/published after an ownership check.
func (s *VideoServiceImpl) TogglePublish(ctx context.Context, callerID, id uuid.UUID) (bool, error) {
	if _, err := s.mustOwn(ctx, callerID, id); err != nil {
		return false, err
	}
	return s.videos.TogglePublish(ctx, id)
}

// ToggleLike flips the caller's like on an existing video.
func (s *VideoServiceImpl) ToggleLike(ctx context.Context, callerID, id uuid.UUID) (bool, error) {
	if _, err := s.videos.GetByID(ctx, id); err != nil {
		return false, err
	}
	return s.likes.ToggleVideo(ctx, callerID, id)
}

// ListLiked returns videos the caller has liked.
func (s *VideoServiceImpl) ListLiked(ctx context.Context, callerID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error) {
	return s.likes.ListLikedVideos(ctx, callerID, page)
}

// History returns the caller's watch history.
func (s *VideoServiceImpl) History(ctx context.Context, callerID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error) {
	return s.history.ListForUser(ctx, callerID, page)
}

// mustOwn loads the video and verifies ownership. A missing id reads as
// not-found before any ownership decision; an existing video someone else
// owns is forbidden.
func (s *VideoServiceImpl) mustOwn(ctx context.Context, callerID, id uuid.UUID) (*model.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.OwnerID != callerID {
		return nil, errs.ErrForbidden
	}
	return v, nil
}
