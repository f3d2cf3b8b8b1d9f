// Package token issues and verifies the signed access and refresh tokens
// that carry session identity between requests. Issuance has no storage
// side effect: callers persist the refresh token on the account themselves.
package token

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
)

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the verified content of an access token.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Username string
}

// Manager signs and verifies tokens with separate secrets and lifetimes for
// the access and refresh families. A token signed with one secret never
// verifies under the other.
type Manager struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager constructs a Manager from the configured secrets and TTLs.
func NewManager(accessKey, refreshKey []byte, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessKey:  accessKey,
		refreshKey: refreshKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL reports the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// IssueAccess creates a signed HS256 access token for the user.
func (m *Manager) IssueAccess(u *model.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.accessTTL)
	claims := AccessClaims{
		Email:    u.Email,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.accessKey)
	return signed, exp, err
}

// IssueRefresh creates a signed HS256 refresh token carrying the user id and
// a random jti. The jti makes every issued token distinct, so rotation always
// displaces the stored value even within the same second.
func (m *Manager) IssueRefresh(u *model.User) (string, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        jti.String(),
		Subject:   u.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.refreshKey)
}

// ParseAccess verifies an access token. Expiry is reported as
// errs.ErrTokenExpired; every other failure is errs.ErrUnauthorized.
func (m *Manager) ParseAccess(tokenStr string) (Identity, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.accessKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, errs.ErrTokenExpired
		}
		return Identity{}, errs.ErrUnauthorized
	}
	if !parsed.Valid {
		return Identity{}, errs.ErrUnauthorized
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return Identity{}, errs.ErrUnauthorized
	}
	return Identity{UserID: id, Email: claims.Email, Username: claims.Username}, nil
}

// ParseRefresh verifies a refresh token and returns the user id it names.
// Any failure, expiry included, is errs.ErrRefreshInvalid: the caller cannot
// recover an expired refresh token, so there is nothing to distinguish.
func (m *Manager) ParseRefresh(tokenStr string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.refreshKey, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, errs.ErrRefreshInvalid
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.ErrRefreshInvalid
	}
	return id, nil
}
