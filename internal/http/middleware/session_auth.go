package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/session"
)

type contextKey string

const identityKey contextKey = "sessionIdentity"

// Identity is the authenticated principal attached to a request.
type Identity struct {
	ID   string
	Name string
	Role hospital.Role
}

// SessionAuth validates the bearer session token and attaches the identity
// to the request context. Until the session store has hydrated, every
// request reports a loading state instead of an authorization decision.
func SessionAuth(tokens *session.TokenIssuer, ready func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ready != nil && !ready() {
				http.Error(w, "initializing", http.StatusServiceUnavailable)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			identity := Identity{
				ID:   claims.Subject,
				Name: claims.Name,
				Role: hospital.Role(claims.Role),
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity, if present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
