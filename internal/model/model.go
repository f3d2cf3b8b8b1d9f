// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access/refresh token pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User represents an account. The password is stored only as an Argon2id
// hash with a per-user salt; RefreshToken holds the single currently valid
// refresh token, empty when the user has no active session.
type User struct {
	ID           uuid.UUID // PK
	Username     string    // unique among verified accounts, stored lowercase
	Email        string    // unique among verified accounts, stored lowercase
	Name         string
	ProfileImage string
	PwdHash      []byte // Argon2id(password, SaltAuth)
	SaltAuth     []byte // per-user auth salt
	IsVerified   bool
	VerifyCode   string // 6-digit one-time code, empty when consumed
	VerifyExpiry time.Time
	ResetCode    string
	ResetExpiry  time.Time
	RefreshToken string // at most one valid refresh token per account
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the outward-facing projection of a User. It never carries
// the password hash, salt, one-time codes, or the stored refresh token.
type PublicUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public strips credential and session fields from a User.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

// UserRef is the minimal owner projection joined into feed items.
type UserRef struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage"`
}

// Video is an uploaded video. VideoKey/ThumbKey are object-storage keys,
// resolved to playback URLs on demand.
type Video struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Owner       *UserRef  `json:"owner,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoKey    string    `json:"videoKey"`
	ThumbKey    string    `json:"thumbKey"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment belongs to exactly one of a video or a community post.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Owner     *UserRef  `json:"owner,omitempty"`
	VideoID   uuid.UUID `json:"videoId"`
	PostID    uuid.UUID `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommunityPost is a short text post on a channel page.
type CommunityPost struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"ownerId"`
	Owner      *UserRef  `json:"owner,omitempty"`
	Content    string    `json:"content"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Playlist is a set of videos owned by one user.
type Playlist struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Owner       *UserRef  `json:"owner,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int64     `json:"totalVideos"`
	Videos      []Video   `json:"videos,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Follow is a directed edge in the follow graph. The (FollowerID,
// FollowingID) pair is unique at the storage level.
type Follow struct {
	ID          uuid.UUID `json:"id"`
	FollowerID  uuid.UUID `json:"followerId"`
	FollowingID uuid.UUID `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FollowEntry is one row of a followers/following listing.
type FollowEntry struct {
	UserID       uuid.UUID `json:"userId"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage"`
	FollowedAt   time.Time `json:"followedAt"`
}

// ChannelStats aggregates dashboard totals for one channel.
type ChannelStats struct {
	TotalVideos    int64 `json:"totalVideos"`
	TotalViews     int64 `json:"totalViews"`
	TotalFollowers int64 `json:"totalFollowers"`
	TotalLikes     int64 `json:"totalLikes"`
}

// Page bounds a paginated listing.
type Page struct {
	Number int
	Size   int
}

// Normalize applies defaults and clamps the page size.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 10
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

// Offset converts the page to a SQL offset.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Paginated wraps listing results with paging metadata.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
}
