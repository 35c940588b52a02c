package auth

import (
	"context"
	"net/http"
	"strings"

	"findr/backend/internal/httpx"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	ID   string
	Role string
}

type contextKey struct{}

// FromContext returns the Identity set by the middleware, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Middleware authenticates requests from their Bearer token.
type Middleware struct {
	secret []byte
}

func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: []byte(secret)}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// Require rejects requests without a valid token.
func (m *Middleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Error(w, http.StatusUnauthorized, "missing authorization token")
			return
		}
		claims, err := ParseToken(m.secret, raw)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, Identity{ID: claims.UserID, Role: claims.Role})
		next(w, r.WithContext(ctx))
	}
}

// RequireRole additionally rejects callers whose role does not match.
func (m *Middleware) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return m.Require(func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromContext(r.Context())
		if id.Role != role {
			httpx.Error(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next(w, r)
	})
}

// Optional attaches an Identity when a valid token is present and lets the
// request through either way. Used by public job routes that behave
// differently for the job's owner.
func (m *Middleware) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := bearerToken(r); raw != "" {
			if claims, err := ParseToken(m.secret, raw); err == nil {
				ctx := context.WithValue(r.Context(), contextKey{}, Identity{ID: claims.UserID, Role: claims.Role})
				r = r.WithContext(ctx)
			}
		}
		next(w, r)
	}
}
