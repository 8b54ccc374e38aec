package middleware

import "context"

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey = contextKey("identity")

// Identity represents the authenticated user bound to the current request.
// A zero UserID means the visitor is anonymous.
type Identity struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

// Authenticated reports whether the identity belongs to a logged-in user.
func (id *Identity) Authenticated() bool {
	return id.UserID != 0
}

// GetIdentity retrieves the identity from the request context.
func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityContextKey).(*Identity); ok {
		return id
	}
	// Anonymous visitor when nothing is bound.
	return &Identity{}
}

// SetIdentity adds the identity to the request context.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
