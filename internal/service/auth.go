// Package service contains the application services behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/clipstream/clipstream/internal/crypto"
	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/limiter"
	"github.com/clipstream/clipstream/internal/mail"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
	"github.com/clipstream/clipstream/internal/token"
)

// CodeTTL is how long a verification or reset code stays valid.
const CodeTTL = 15 * time.Minute

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username string
	Email    string
	Name     string
	Password string
}

// AuthService defines account and session lifecycle operations.
type AuthService interface {
	// UsernameAvailable reports whether a username can still be claimed.
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	// Register creates an unverified account and mails a verification code.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// VerifyAccount consumes a verification code and activates the account.
	VerifyAccount(ctx context.Context, email, code string) error
	// ResendVerifyCode issues a fresh verification code for an unverified account.
	ResendVerifyCode(ctx context.Context, email string) error
	// Login authenticates a verified account by email or username and opens
	// a session.
	Login(ctx context.Context, identifier, password, ip string) (model.Tokens, *model.User, error)
	// Refresh rotates the session's refresh token and issues a new pair.
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
	// Logout revokes the account's stored refresh token.
	Logout(ctx context.Context, userID uuid.UUID) error
	// ChangePassword replaces the password for a logged-in user. The current
	// session stays valid.
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	// ForgotPassword mails a password reset code.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword consumes a reset code, replaces the password and revokes
	// any open session.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	// Me loads the calling user.
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	// UpdateProfile updates display name and profile image.
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, profileImage string) (*model.User, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens *token.Manager
	lim    limiter.Limiter
	mailer mail.Mailer
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Manager, lim limiter.Limiter, mailer mail.Mailer) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim, mailer: mailer}
}

// UsernameAvailable treats usernames held by unverified accounts as free,
// since such rows can be overwritten by a new signup.
func (s *AuthServiceImpl) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = normalize(username)
	if username == "" {
		return false, fmt.Errorf("%w: empty username", errs.ErrValidation)
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return !u.IsVerified, nil
}

// Register creates an account in the unverified state. A signup may reclaim
// an unverified row, but never an address or username a verified account
// holds, and never a pair split across two different rows.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = normalize(in.Email)
	in.Username = normalize(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", errs.ErrValidation)
	}

	byEmail, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	byUsername, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	if byEmail != nil && byEmail.IsVerified {
		return nil, fmt.Errorf("%w: email already in use", errs.ErrAlreadyExists)
	}
	if byUsername != nil && byUsername.IsVerified {
		return nil, fmt.Errorf("%w: username already taken", errs.ErrAlreadyExists)
	}
	if byEmail != nil && byUsername != nil && byEmail.ID != byUsername.ID {
		return nil, fmt.Errorf("%w: email and username belong to different accounts", errs.ErrAlreadyExists)
	}

	salt, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return nil, err
	}
	code, err := pkgcrypto.OneTimeCode()
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PwdHash:      pkgcrypto.HashPassword([]byte(in.Password), salt),
		SaltAuth:     salt,
		VerifyCode:   code,
		VerifyExpiry: time.Now().Add(CodeTTL),
	}

	existing := byEmail
	if existing == nil {
		existing = byUsername
	}
	if existing != nil {
		// Overwrite the abandoned unverified row in place.
		u.ID = existing.ID
		if err := s.users.ReplaceUnverified(ctx, u); err != nil {
			return nil, err
		}
	} else {
		u.ID, err = uuid.NewV4()
		if err != nil {
			return nil, err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
	}

	if err := s.mailer.SendVerifyCode(ctx, u.Email, u.Name, code); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyAccount activates the account the code was mailed to. Expiry is
// checked before equality, so a stale code always reads as expired.
func (s *AuthServiceImpl) VerifyAccount(ctx context.Context, email, code string) error {
	u, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		return err
	}
	if u.IsVerified {
		return errs.ErrAlreadyVerified
	}
	if time.Now().After(u.VerifyExpiry) {
		return errs.ErrCodeExpired
	}
	if u.VerifyCode == "" || u.VerifyCode != code {
		return errs.ErrCodeInvalid
	}
	return s.users.MarkVerified(ctx, u.ID)
}

// ResendVerifyCode replaces the pending code, invalidating the previous one.
func (s *AuthServiceImpl) ResendVerifyCode(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		return err
	}
	if u.IsVerified {
		return errs.ErrAlreadyVerified
	}
	code, err := pkgcrypto.OneTimeCode()
	if err != nil {
		return err
	}
	if err := s.users.SetVerifyCode(ctx, u.ID, code, time.Now().Add(CodeTTL)); err != nil {
		return err
	}
	return s.mailer.SendVerifyCode(ctx, u.Email, u.Name, code)
}

// Login authenticates with rate limiting by (identifier, ip). The
// identifier is an email when it contains '@', a username otherwise.
// Unknown account, wrong password and unverified account all answer the
// same way so the response never leaks which accounts exist.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password, ip string) (model.Tokens, *model.User, error) {
	identifier = normalize(identifier)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, identifier, ipHash)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	if !allowed {
		return model.Tokens{}, nil, errs.ErrRateLimited
	}

	lookup := s.users.GetByUsername
	if strings.ContainsRune(identifier, '@') {
		lookup = s.users.GetByEmail
	}
	u, err := lookup(ctx, identifier)
	if err != nil || !u.IsVerified || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, identifier, ipHash); ferr == nil && blocked {
			return model.Tokens{}, nil, errs.ErrRateLimited
		}
		return model.Tokens{}, nil, errs.ErrInvalidCredentials
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, identifier, ipHash)

	tokens, err := s.issuePair(ctx, u)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	return tokens, u, nil
}

// Refresh rotates the refresh token. The presented token must verify AND
// match the stored one textually; a replay of a rotated-out token fails the
// equality check and is rejected.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return model.Tokens{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.Tokens{}, errs.ErrRefreshInvalid
	}
	if u.RefreshToken == "" || u.RefreshToken != refreshToken {
		return model.Tokens{}, errs.ErrRefreshInvalid
	}
	return s.issuePair(ctx, u)
}

// Logout revokes the stored refresh token. Outstanding access tokens stay
// valid until they expire.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.users.SetRefreshToken(ctx, userID, "")
}

// ChangePassword verifies the old password before replacing it. The stored
// refresh token is untouched, so the session survives.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: empty new password", errs.ErrValidation)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !pkgcrypto.VerifyPassword([]byte(oldPassword), u.SaltAuth, u.PwdHash) {
		return errs.ErrInvalidCredentials
	}
	salt, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, userID, pkgcrypto.HashPassword([]byte(newPassword), salt), salt)
}

// ForgotPassword mails a reset code. Only a verified account can start a
// reset; unknown and unverified addresses answer the same way, so the code
// is never mailed to a mailbox nobody has proven they own.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%w: no verified account for that email", errs.ErrValidation)
		}
		return err
	}
	if !u.IsVerified {
		return fmt.Errorf("%w: no verified account for that email", errs.ErrValidation)
	}
	code, err := pkgcrypto.OneTimeCode()
	if err != nil {
		return err
	}
	if err := s.users.SetResetCode(ctx, u.ID, code, time.Now().Add(CodeTTL)); err != nil {
		return err
	}
	return s.mailer.SendResetCode(ctx, u.Email, u.Name, code)
}

// ResetPassword consumes the reset code and revokes the open session, so
// the next request must log in with the new password.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: empty new password", errs.ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		return err
	}
	if time.Now().After(u.ResetExpiry) {
		return errs.ErrCodeExpired
	}
	if u.ResetCode == "" || u.ResetCode != code {
		return errs.ErrCodeInvalid
	}
	salt, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, u.ID, pkgcrypto.HashPassword([]byte(newPassword), salt), salt)
}

// Me loads the calling user.
func (s *AuthServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile updates display name and profile image.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, name, profileImage string) (*model.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, name, profileImage); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// issuePair mints a new access/refresh pair and stores the refresh token,
// displacing whatever token was stored before.
func (s *AuthServiceImpl) issuePair(ctx context.Context, u *model.User) (model.Tokens, error) {
	access, exp, err := s.tokens.IssueAccess(u)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, err := s.tokens.IssueRefresh(u)
	if err != nil {
		return model.Tokens{}, err
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// normalize lowercases and trims an identifier.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
