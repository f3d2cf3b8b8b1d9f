package service

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

// DashboardService aggregates channel statistics for the owner's studio
// view.
type DashboardService interface {
	// Stats returns channel totals across videos, views, followers and likes.
	Stats(ctx context.Context, userID uuid.UUID) (*model.ChannelStats, error)
	// Videos returns a page of the owner's videos, drafts included.
	Videos(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error)
}

type DashboardServiceImpl struct {
	videos  repository.VideoRepository
	follows repository.FollowRepository
	likes   repository.LikeRepository
}

// NewDashboardService constructs DashboardService with required dependencies.
func NewDashboardService(videos repository.VideoRepository, follows repository.FollowRepository, likes repository.LikeRepository) *DashboardServiceImpl {
	return &DashboardServiceImpl{videos: videos, follows: follows, likes: likes}
}

// Stats fans the four totals out in parallel.
func (s *DashboardServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*model.ChannelStats, error) {
	var stats model.ChannelStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalVideos, stats.TotalViews, err = s.videos.CountByOwner(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalFollowers, err = s.follows.CountFollowers(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalLikes, err = s.likes.CountForOwner(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Videos lists the owner's videos newest first, drafts included.
func (s *DashboardServiceImpl) Videos(ctx context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.Video], error) {
	return s.videos.List(ctx, repository.VideoFilter{
		OwnerID:  userID,
		SortDesc: true,
		Page:     page,
	})
}
