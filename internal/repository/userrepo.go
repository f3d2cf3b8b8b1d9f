// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/model"
)

// UserRepository provides account storage. Uniqueness of email and username
// is enforced only among verified accounts; an unverified row may be
// overwritten by a later signup attempt.
type UserRepository interface {
	// Create inserts a new user. A verified-uniqueness violation maps to
	// errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// ReplaceUnverified overwrites an existing unverified row in place,
	// keeping its id but replacing credentials, profile and codes.
	ReplaceUnverified(ctx context.Context, u *model.User) error
	// GetByID loads a user by id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by lowercase email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByUsername loads a user by lowercase username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// MarkVerified flips is_verified and clears the verification code. A
	// uniqueness race with another verifying account maps to
	// errs.ErrAlreadyExists.
	MarkVerified(ctx context.Context, id uuid.UUID) error
	// SetVerifyCode stores a fresh verification code and its expiry.
	SetVerifyCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	// SetResetCode stores a fresh password reset code and its expiry.
	SetResetCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	// SetRefreshToken replaces the stored refresh token. An empty token
	// clears the session.
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	// SetPassword replaces the password hash and salt, leaving the stored
	// refresh token untouched.
	SetPassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error
	// ResetPassword replaces the password hash and salt and clears both the
	// reset code and the stored refresh token.
	ResetPassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error
	// UpdateProfile updates the display name and profile image.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, profileImage string) error
}
