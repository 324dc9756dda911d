package middleware

import (
	"context"

	"github.com/bazaarlabs/bazaar-backend/pkg/auth"
	"github.com/google/uuid"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	if ctx == nil {
		return auth.Identity{}, false
	}
	if v, ok := ctx.Value(ctxIdentity).(auth.Identity); ok && v.UserID != uuid.Nil {
		return v, true
	}
	return auth.Identity{}, false
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}
