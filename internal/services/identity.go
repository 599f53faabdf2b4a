package services

import (
	"context"
	"slices"

	"storefront/internal/domain"
)

type identityKey struct{}

// WithIdentity returns a context carrying the verified caller.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by WithIdentity, if any.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	if ctx == nil {
		return domain.Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

// Authorize grants access when no roles are required, or when the caller's role is one of them.
// A caller without an identity is denied whenever roles are required.
func Authorize(ctx context.Context, roles ...domain.Role) error {
	if len(roles) == 0 {
		return nil
	}
	id, ok := IdentityFrom(ctx)
	if !ok || id.Role == "" {
		return forbidden("Forbidden resource")
	}
	if !slices.Contains(roles, id.Role) {
		return forbidden("Forbidden resource")
	}
	return nil
}
