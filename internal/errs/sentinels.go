// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (missing, malformed or
	// otherwise invalid access token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates a failed login or password check. It
	// wraps ErrUnauthorized so both answer 401, but the response message
	// names the bad credentials rather than a missing session.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)

	// ErrTokenExpired indicates an access token that is valid except for its
	// expiry. Kept distinct from ErrUnauthorized so clients know to refresh.
	ErrTokenExpired = errors.New("access token expired")

	// ErrRefreshInvalid indicates a refresh token that failed verification or
	// does not match the account's currently stored token.
	ErrRefreshInvalid = errors.New("invalid refresh token")

	// ErrForbidden indicates the caller is authenticated but does not own the
	// resource being mutated.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., a
	// verified account already holds the email or username).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrCodeExpired indicates an expired verification/reset code. Expiry is
	// always checked before equality.
	ErrCodeExpired = errors.New("code expired")

	// ErrCodeInvalid indicates a mismatched verification/reset code.
	ErrCodeInvalid = errors.New("invalid code")

	// ErrAlreadyVerified indicates a verification attempt against an account
	// that is already verified (the code was consumed earlier).
	ErrAlreadyVerified = errors.New("already verified")

	// ErrAlreadyAuthenticated indicates a guest-only route called with a
	// valid session.
	ErrAlreadyAuthenticated = errors.New("already logged in")

	// ErrSelfFollow indicates an attempt to follow one's own account.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrValidation indicates domain-level bad input.
	ErrValidation = errors.New("validation failed")
)
