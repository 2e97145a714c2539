// Authorization gate middlewares. These run after the authentication
// middleware and decide whether the attached identity (or its absence)
// satisfies the capability the route requires. Missing identity and
// insufficient role are distinct failures: 401 versus 403.
package auth

import (
	"net/http"

	"github.com/user/stadium-tickets-go/apperror"
)

// Role names known to the system.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// RequireAuthenticated permits any request with a valid identity attached
// and rejects anonymous requests with 401. The message is deliberately
// generic: it never reveals which authentication check failed.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole permits requests whose identity holds at least one of the
// given roles. Anonymous requests get 401; authenticated requests without
// a matching role get 403.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, r, apperror.NewAuthError("authentication required", nil))
				return
			}
			if !identity.HasRole(roles...) {
				WriteError(w, r, apperror.NewUnauthorizedError("access denied: check that your account has the required role and that you are using a current token", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
