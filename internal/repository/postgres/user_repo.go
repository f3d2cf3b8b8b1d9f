package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL. Uniqueness of email
// and username is enforced by partial unique indexes over verified rows, so
// the insert itself is the conflict check.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `
id, username, email, name, profile_image, pwd_hash, salt_auth, is_verified,
verify_code, verify_expiry, reset_code, reset_expiry, refresh_token,
created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Name, &u.ProfileImage,
		&u.PwdHash, &u.SaltAuth, &u.IsVerified,
		&u.VerifyCode, &u.VerifyExpiry, &u.ResetCode, &u.ResetExpiry,
		&u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, email, name, profile_image, pwd_hash, salt_auth,
                   is_verified, verify_code, verify_expiry)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Pool.Exec(ctx, q,
		u.ID, u.Username, u.Email, u.Name, u.ProfileImage,
		u.PwdHash, u.SaltAuth, u.IsVerified, u.VerifyCode, u.VerifyExpiry)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// ReplaceUnverified overwrites an unverified row with fresh signup data.
func (r *UserRepo) ReplaceUnverified(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users
SET username=$2, email=$3, name=$4, profile_image=$5, pwd_hash=$6, salt_auth=$7,
    verify_code=$8, verify_expiry=$9, updated_at=now()
WHERE id=$1 AND NOT is_verified`
	tag, err := r.db.Pool.Exec(ctx, q,
		u.ID, u.Username, u.Email, u.Name, u.ProfileImage,
		u.PwdHash, u.SaltAuth, u.VerifyCode, u.VerifyExpiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetByID selects a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by lowercase email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

// GetByUsername selects a user by lowercase username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

// MarkVerified flips is_verified and clears the one-time code. The partial
// unique indexes fire here if another account verified the same email or
// username first.
func (r *UserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE users
SET is_verified=true, verify_code='', verify_expiry='epoch', updated_at=now()
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetVerifyCode stores a fresh verification code.
func (r *UserRepo) SetVerifyCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	const q = `UPDATE users SET verify_code=$2, verify_expiry=$3, updated_at=now() WHERE id=$1`
	return r.execOne(ctx, q, id, code, expiry)
}

// SetResetCode stores a fresh password reset code.
func (r *UserRepo) SetResetCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	const q = `UPDATE users SET reset_code=$2, reset_expiry=$3, updated_at=now() WHERE id=$1`
	return r.execOne(ctx, q, id, code, expiry)
}

// SetRefreshToken replaces the stored refresh token; empty clears it.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	const q = `UPDATE users SET refresh_token=$2, updated_at=now() WHERE id=$1`
	return r.execOne(ctx, q, id, token)
}

// SetPassword replaces the hash and salt. The refresh token stays valid.
func (r *UserRepo) SetPassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, salt_auth=$3, updated_at=now() WHERE id=$1`
	return r.execOne(ctx, q, id, hash, salt)
}

// ResetPassword replaces the hash and salt, consumes the reset code and
// revokes the current session.
func (r *UserRepo) ResetPassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error {
	const q = `
UPDATE users
SET pwd_hash=$2, salt_auth=$3, reset_code='', reset_expiry='epoch',
    refresh_token='', updated_at=now()
WHERE id=$1`
	return r.execOne(ctx, q, id, hash, salt)
}

// UpdateProfile updates display name and profile image.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name, profileImage string) error {
	const q = `UPDATE users SET name=$2, profile_image=$3, updated_at=now() WHERE id=$1`
	return r.execOne(ctx, q, id, name, profileImage)
}

func (r *UserRepo) execOne(ctx context.Context, q string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
