// Authentication middleware. Unlike a conventional JWT guard, this
// middleware never rejects a request: it either attaches a resolved
// Identity to the context or lets the request continue anonymously, and
// the gate middlewares downstream decide whether anonymous access is
// acceptable for the route. That split keeps public and protected routes
// behind one uniform pipeline.
package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
)

// bearerPrefix is matched exactly: case-sensitive, single space.
const bearerPrefix = "Bearer "

// IdentityResolver resolves a verified token subject to a live identity.
// It is an interface so the middleware can be exercised in tests without
// a database.
type IdentityResolver interface {
	Resolve(ctx context.Context, username string) (*Identity, error)
}

// Authenticator bundles the token codec with an identity resolver and
// produces the per-request authentication middleware.
type Authenticator struct {
	codec    *TokenCodec
	resolver IdentityResolver
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(codec *TokenCodec, resolver IdentityResolver) *Authenticator {
	return &Authenticator{codec: codec, resolver: resolver}
}

// Middleware returns the authentication middleware. Authentication runs
// first and attaches an identity on success; the downstream chain is then
// invoked exactly once either way. Panics raised by handlers below this
// middleware are not intercepted here.
func (a *Authenticator) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, ok := a.authenticate(r); ok {
				r = r.WithContext(NewContextWithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate walks the states: no token → token extracted → format
// valid → verified → identity resolved. Any failure along the way,
// including a panic inside resolution, logs the reason and reports no
// identity; authenticate never writes a response.
func (a *Authenticator) authenticate(r *http.Request) (identity *Identity, ok bool) {
	defer func() {
		// Identity resolution must never crash request handling.
		if rvr := recover(); rvr != nil {
			log.Printf("panic during authentication, continuing anonymously: %v", rvr)
			identity, ok = nil, false
		}
	}()

	tokenString, ok := extractBearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}

	if !a.codec.Verify(tokenString) {
		return nil, false
	}

	username, err := a.codec.Subject(tokenString)
	if err != nil {
		log.Printf("cannot derive subject from verified token: %v", err)
		return nil, false
	}

	identity, err = a.resolver.Resolve(r.Context(), username)
	if err != nil {
		log.Printf("cannot resolve identity for %q: %v", username, err)
		return nil, false
	}
	return identity, true
}

// extractBearerToken pulls a candidate token out of an Authorization
// header value. Only values with the exact "Bearer " prefix qualify, and
// the candidate must contain exactly two '.' separators (three segments);
// malformed shapes are dropped here so signature verification is never
// attempted on them.
func extractBearerToken(header string) (string, bool) {
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if strings.Count(token, ".") != 2 {
		log.Printf("rejected bearer token: expected exactly 2 separators, got %d", strings.Count(token, "."))
		return "", false
	}
	return token, true
}
