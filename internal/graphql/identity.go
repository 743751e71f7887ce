package graphql

import "context"

// Identity is the authenticated caller attached to a GraphQL request.
// Requests without a valid token carry no identity; resolvers that need one
// fail with an authentication error.
type Identity struct {
	UserID uint
	Role   string
}

type identityKey struct{}

// WithIdentity attaches the caller identity to the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom extracts the caller identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
