package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

// PostService defines community post operations.
type PostService interface {
	// Create publishes a post on the caller's channel.
	Create(ctx context.Context, callerID uuid.UUID, content string) (*model.CommunityPost, error)
	// Get loads a post with like state for the viewer.
	Get(ctx context.Context, id, viewerID uuid.UUID) (*model.CommunityPost, error)
	// ListByChannel returns a page of a channel's posts.
	ListByChannel(ctx context.Context, username string, viewerID uuid.UUID, page model.Page) (*model.Paginated[model.CommunityPost], error)
	// Update edits a post. Owner only.
	Update(ctx context.Context, callerID, id uuid.UUID, content string) (*model.CommunityPost, error)
	// Delete removes a post. Owner only.
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	// ToggleLike flips the caller's like on a post.
	ToggleLike(ctx context.Context, callerID, id uuid.UUID) (bool, error)
}

type PostServiceImpl struct {
	posts repository.PostRepository
	users repository.UserRepository
	likes repository.LikeRepository
}

// NewPostService constructs PostService with required dependencies.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, likes repository.LikeRepository) *PostServiceImpl {
	return &PostServiceImpl{posts: posts, users: users, likes: likes}
}

// Create publishes a post.
func (s *PostServiceImpl) Create(ctx context.Context, callerID uuid.UUID, content string) (*model.CommunityPost, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty post", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.CommunityPost{ID: id, OwnerID: callerID, Content: content}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id, callerID)
}

// Get loads a post.
func (s *PostServiceImpl) Get(ctx context.Context, id, viewerID uuid.UUID) (*model.CommunityPost, error) {
	return s.posts.GetByID(ctx, id, viewerID)
}

// ListByChannel resolves the channel by username and returns its posts.
func (s *PostServiceImpl) ListByChannel(ctx context.Context, username string, viewerID uuid.UUID, page model.Page) (*model.Paginated[model.CommunityPost], error) {
	owner, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return nil, err
	}
	return s.posts.ListByOwner(ctx, owner.ID, viewerID, page)
}

// Update edits a post after an ownership check.
func (s *PostServiceImpl) Update(ctx context.Context, callerID, id uuid.UUID, content string) (*model.CommunityPost, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty post", errs.ErrValidation)
	}
	if err := s.mustOwn(ctx, callerID, id); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id, callerID)
}

// Delete removes a post after an ownership check.
func (s *PostServiceImpl) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if err := s.mustOwn(ctx, callerID, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

// ToggleLike flips the caller's like on an existing post.
func (s *PostServiceImpl) ToggleLike(ctx context.Context, callerID, id uuid.UUID) (bool, error) {
	if _, err := s.posts.GetByID(ctx, id, callerID); err != nil {
		return false, err
	}
	return s.likes.TogglePost(ctx, callerID, id)
}

func (s *PostServiceImpl) mustOwn(ctx context.Context, callerID, id uuid.UUID) error {
	p, err := s.posts.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}
	if p.OwnerID != callerID {
		return errs.ErrForbidden
	}
	return nil
}
