// Identity propagation through the request context. The middleware stores
// the resolved caller identity under an unexported key; handlers and gate
// middlewares read it back with IdentityFromContext.
package auth

import (
	"context"
)

// Identity is the resolved caller: username plus the role names held by
// the corresponding user at resolution time. Roles are re-read from the
// database on every request rather than trusted from token claims, so a
// role grant or revocation takes effect on the caller's next request
// without re-issuing the token.
type Identity struct {
	UserID   int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the identity holds any of the given role names.
func (id *Identity) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range id.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// contextKey is a private type for context keys to avoid collisions with
// other packages.
type contextKey string

const identityContextKey contextKey = "auth_identity"

// NewContextWithIdentity returns a child context carrying the identity.
func NewContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the caller identity attached by the
// authentication middleware. The bool result is false for anonymous
// requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}
