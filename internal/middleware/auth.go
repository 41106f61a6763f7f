package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/repotrack/backend/internal/auth"
	"github.com/repotrack/backend/internal/roles"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// Authenticator verifies bearer tokens and checks the Redis session mirror
// so revoked tokens stop working before they expire.
type Authenticator struct {
	jwt      *auth.JWTService
	sessions *auth.SessionStore
}

func NewAuthenticator(jwt *auth.JWTService, sessions *auth.SessionStore) *Authenticator {
	return &Authenticator{jwt: jwt, sessions: sessions}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token and
// stores the verified claims in the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "Missing authorization token")
			return
		}

		claims, err := a.jwt.VerifyToken(token)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		if !a.sessions.Valid(r.Context(), claims.ID) {
			unauthorized(w, "Session expired. Please log in again")
			return
		}
		// Sliding expiry: activity keeps the session mirror alive.
		a.sessions.Refresh(r.Context(), claims.UserID, claims.ID)

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability gates a route on the role capability table. Must run
// after RequireAuth.
func (a *Authenticator) RequireCapability(action roles.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				unauthorized(w, "Missing authorization token")
				return
			}
			if !roles.Can(claims.Role, action) {
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows admin-tier roles only. Must run after RequireAuth.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w, "Missing authorization token")
			return
		}
		if !roles.IsAdmin(claims.Role) {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// ContextWithClaims is used by tests and the WebSocket gateway, which
// authenticates outside the middleware chain.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// WebSocket clients cannot set headers; allow ?token= there.
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"success":false,"message":"You do not have permission to perform this action"}`))
}
