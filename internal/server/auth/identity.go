package auth

import (
	"context"

	"github.com/dmitrijs2005/alumnihub/internal/server/models"
)

// Identity is what a verified access token resolves to.
type Identity struct {
	ID       string
	UserName string
	Kind     models.Kind
}

type ctxKey int

const identityKey ctxKey = iota

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity set by the auth gate, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
