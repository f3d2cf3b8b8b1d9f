package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

// ChannelProfile is a channel page header: the public account plus follow
// totals computed for the viewer.
type ChannelProfile struct {
	User        model.PublicUser `json:"user"`
	Followers   int64            `json:"followers"`
	Following   int64            `json:"following"`
	IsFollowing bool             `json:"isFollowing"`
}

// FollowService defines the follow graph operations.
type FollowService interface {
	// Toggle follows or unfollows the named channel and returns the new
	// state.
	Toggle(ctx context.Context, callerID uuid.UUID, username string) (following bool, err error)
	// Channel loads a channel profile for the viewer. viewerID may be
	// uuid.Nil for anonymous readers.
	Channel(ctx context.Context, username string, viewerID uuid.UUID) (*ChannelProfile, error)
	// Followers returns a page of the channel's followers.
	Followers(ctx context.Context, username string, page model.Page) (*model.Paginated[model.FollowEntry], error)
	// Following returns a page of accounts the channel follows.
	Following(ctx context.Context, username string, page model.Page) (*model.Paginated[model.FollowEntry], error)
}

type FollowServiceImpl struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

// NewFollowService constructs FollowService with required dependencies.
func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowServiceImpl {
	return &FollowServiceImpl{follows: follows, users: users}
}

// Toggle follows the channel if not yet followed, otherwise unfollows. A
// concurrent duplicate follow settles as already-following.
func (s *FollowServiceImpl) Toggle(ctx context.Context, callerID uuid.UUID, username string) (bool, error) {
	target, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return false, err
	}
	if target.ID == callerID {
		return false, errs.ErrSelfFollow
	}

	removed, err := s.follows.Unfollow(ctx, callerID, target.ID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if err := s.follows.Follow(ctx, callerID, target.ID); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// Channel loads the profile header, fetching the follow totals in parallel.
func (s *FollowServiceImpl) Channel(ctx context.Context, username string, viewerID uuid.UUID) (*ChannelProfile, error) {
	u, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return nil, err
	}

	p := &ChannelProfile{User: u.Public()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p.Followers, err = s.follows.CountFollowers(gctx, u.ID)
		return err
	})
	g.Go(func() error {
		var err error
		p.Following, err = s.follows.CountFollowing(gctx, u.ID)
		return err
	})
	if viewerID != uuid.Nil && viewerID != u.ID {
		g.Go(func() error {
			var err error
			p.IsFollowing, err = s.follows.Exists(gctx, viewerID, u.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

// Followers returns a page of the channel's followers.
func (s *FollowServiceImpl) Followers(ctx context.Context, username string, page model.Page) (*model.Paginated[model.FollowEntry], error) {
	u, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return nil, err
	}
	return s.follows.ListFollowers(ctx, u.ID, page)
}

// Following returns a page of accounts the channel follows.
func (s *FollowServiceImpl) Following(ctx context.Context, username string, page model.Page) (*model.Paginated[model.FollowEntry], error) {
	u, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return nil, err
	}
	return s.follows.ListFollowing(ctx, u.ID, page)
}
