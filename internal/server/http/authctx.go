package httpserver

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/clipstream/clipstream/internal/token"
)

type ctxKey string

const identityKey ctxKey = "cs.identity"

// WithIdentity stores the authenticated identity in context.
func WithIdentity(ctx context.Context, id token.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the authenticated identity from context.
func IdentityFromCtx(ctx context.Context) (token.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return token.Identity{}, false
	}
	id, ok := v.(token.Identity)
	return id, ok
}

// viewerID returns the authenticated user id, or uuid.Nil for anonymous
// requests on viewer-aware public routes.
func viewerID(ctx context.Context) uuid.UUID {
	if id, ok := IdentityFromCtx(ctx); ok {
		return id.UserID
	}
	return uuid.Nil
}
