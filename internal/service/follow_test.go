package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

type edge struct{ follower, following uuid.UUID }

type fakeFollows struct {
	edges map[edge]time.Time
}

var _ repository.FollowRepository = (*fakeFollows)(nil)

func (f *fakeFollows) Follow(_ context.Context, followerID, followingID uuid.UUID) error {
	if f.edges == nil {
		f.edges = map[edge]time.Time{}
	}
	e := edge{followerID, followingID}
	if _, ok := f.edges[e]; ok {
		return errs.ErrAlreadyExists
	}
	f.edges[e] = time.Now()
	return nil
}

func (f *fakeFollows) Unfollow(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	e := edge{followerID, followingID}
	if _, ok := f.edges[e]; !ok {
		return false, nil
	}
	delete(f.edges, e)
	return true, nil
}

func (f *fakeFollows) Exists(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	_, ok := f.edges[edge{followerID, followingID}]
	return ok, nil
}

func (f *fakeFollows) ListFollowers(_ context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.FollowEntry], error) {
	page = page.Normalize()
	items := []model.FollowEntry{}
	for e, at := range f.edges {
		if e.following == userID {
			items = append(items, model.FollowEntry{UserID: e.follower, FollowedAt: at})
		}
	}
	return &model.Paginated[model.FollowEntry]{Items: items, Page: page.Number, Limit: page.Size, TotalItems: int64(len(items))}, nil
}

func (f *fakeFollows) ListFollowing(_ context.Context, userID uuid.UUID, page model.Page) (*model.Paginated[model.FollowEntry], error) {
	page = page.Normalize()
	items := []model.FollowEntry{}
	for e, at := range f.edges {
		if e.follower == userID {
			items = append(items, model.FollowEntry{UserID: e.following, FollowedAt: at})
		}
	}
	return &model.Paginated[model.FollowEntry]{Items: items, Page: page.Number, Limit: page.Size, TotalItems: int64(len(items))}, nil
}

func (f *fakeFollows) CountFollowers(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for e := range f.edges {
		if e.following == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeFollows) CountFollowing(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for e := range f.edges {
		if e.follower == userID {
			n++
		}
	}
	return n, nil
}

func TestFollowToggle(t *testing.T) {
	users := &fakeUsers{}
	channel := seedUser(users, "chan@example.com", "channel", "pw", true)
	fan := seedUser(users, "fan@example.com", "fan", "pw", true)
	svc := NewFollowService(&fakeFollows{}, users)

	following, err := svc.Toggle(context.Background(), fan.ID, "channel")
	if err != nil || !following {
		t.Fatalf("first toggle: following=%v err=%v", following, err)
	}
	following, err = svc.Toggle(context.Background(), fan.ID, "channel")
	if err != nil || following {
		t.Fatalf("second toggle: following=%v err=%v", following, err)
	}

	if _, err := svc.Toggle(context.Background(), channel.ID, "channel"); !errors.Is(err, errs.ErrSelfFollow) {
		t.Fatalf("self follow: err=%v, want ErrSelfFollow", err)
	}
	if _, err := svc.Toggle(context.Background(), fan.ID, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing channel: err=%v, want ErrNotFound", err)
	}
}

func TestFollowChannelProfile(t *testing.T) {
	users := &fakeUsers{}
	channel := seedUser(users, "chan@example.com", "channel", "pw", true)
	fan := seedUser(users, "fan@example.com", "fan", "pw", true)
	follows := &fakeFollows{}
	svc := NewFollowService(follows, users)

	if _, err := svc.Toggle(context.Background(), fan.ID, "channel"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	p, err := svc.Channel(context.Background(), "channel", fan.ID)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if p.Followers != 1 || !p.IsFollowing {
		t.Fatalf("profile=%+v", p)
	}
	if p.User.ID != channel.ID {
		t.Fatalf("wrong user in profile")
	}

	// Anonymous viewers get the totals without follow state.
	p, err = svc.Channel(context.Background(), "channel", uuid.Nil)
	if err != nil {
		t.Fatalf("Channel anon: %v", err)
	}
	if p.IsFollowing {
		t.Fatalf("anonymous viewer cannot be following")
	}
}
