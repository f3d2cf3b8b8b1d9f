package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

// CommentService defines comment operations on videos and community posts.
type CommentService interface {
	// AddToVideo comments on an existing video.
	AddToVideo(ctx context.Context, callerID, videoID uuid.UUID, content string) (*model.Comment, error)
	// AddToPost comments on an existing community post.
	AddToPost(ctx context.Context, callerID, postID uuid.UUID, content string) (*model.Comment, error)
	// ListForVideo returns a page of a video's comments.
	ListForVideo(ctx context.Context, videoID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error)
	// ListForPost returns a page of a post's comments.
	ListForPost(ctx context.Context, postID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error)
	// Update edits a comment. Owner only.
	Update(ctx context.Context, callerID, id uuid.UUID, content string) (*model.Comment, error)
	// Delete removes a comment. Owner only.
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	// ToggleLike flips the caller's like on a comment.
	ToggleLike(ctx context.Context, callerID, id uuid.UUID) (bool, error)
}

type CommentServiceImpl struct {
	comments repository.CommentRepository
	videos   repository.VideoRepository
	posts    repository.PostRepository
	likes    repository.LikeRepository
}

// NewCommentService constructs CommentService with required dependencies.
func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository, posts repository.PostRepository, likes repository.LikeRepository) *CommentServiceImpl {
	return &CommentServiceImpl{comments: comments, videos: videos, posts: posts, likes: likes}
}

// AddToVideo comments on a video after checking it exists.
func (s *CommentServiceImpl) AddToVideo(ctx context.Context, callerID, videoID uuid.UUID, content string) (*model.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty comment", errs.ErrValidation)
	}
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		return nil, err
	}
	return s.create(ctx, callerID, videoID, uuid.Nil, content)
}

// AddToPost comments on a community post after checking it exists.
func (s *CommentServiceImpl) AddToPost(ctx context.Context, callerID, postID uuid.UUID, content string) (*model.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty comment", errs.ErrValidation)
	}
	if _, err := s.posts.GetByID(ctx, postID, callerID); err != nil {
		return nil, err
	}
	return s.create(ctx, callerID, uuid.Nil, postID, content)
}

func (s *CommentServiceImpl) create(ctx context.Context, callerID, videoID, postID uuid.UUID, content string) (*model.Comment, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c := &model.Comment{
		ID:      id,
		OwnerID: callerID,
		VideoID: videoID,
		PostID:  postID,
		Content: content,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

// ListForVideo returns a page of a video's comments.
func (s *CommentServiceImpl) ListForVideo(ctx context.Context, videoID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error) {
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		return nil, err
	}
	return s.comments.ListByVideo(ctx, videoID, page)
}

// ListForPost returns a page of a post's comments.
func (s *CommentServiceImpl) ListForPost(ctx context.Context, postID uuid.UUID, page model.Page) (*model.Paginated[model.Comment], error) {
	if _, err := s.posts.GetByID(ctx, postID, uuid.Nil); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, page)
}

// Update edits a comment after an ownership check.
func (s *CommentServiceImpl) Update(ctx context.Context, callerID, id uuid.UUID, content string) (*model.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty comment", errs.ErrValidation)
	}
	if err := s.mustOwn(ctx, callerID, id); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

// Delete removes a comment after an ownership check.
func (s *CommentServiceImpl) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if err := s.mustOwn(ctx, callerID, id); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

// ToggleLike flips the caller's like on an existing comment.
func (s *CommentServiceImpl) ToggleLike(ctx context.Context, callerID, id uuid.UUID) (bool, error) {
	if _, err := s.comments.GetByID(ctx, id); err != nil {
		return false, err
	}
	return s.likes.ToggleComment(ctx, callerID, id)
}

func (s *CommentServiceImpl) mustOwn(ctx context.Context, callerID, id uuid.UUID) error {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != callerID {
		return errs.ErrForbidden
	}
	return nil
}
