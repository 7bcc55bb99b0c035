package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/brettonwoods/internal/api/apierr"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Authenticator resolves a session token to an actor
type Authenticator interface {
	Authenticate(token string) (room.Actor, error)
}

// Auth rejects requests without a valid session token
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			actor, err := authn.Authenticate(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// OptionalAuth attaches the actor if a valid token is present but never rejects
func OptionalAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if actor, err := authn.Authenticate(token); err == nil {
					r = r.WithContext(WithActor(r.Context(), actor))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token, falling back to the session cookie
// and then the token query parameter (EventSource cannot set headers)
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

// WithActor stores the actor in ctx
func WithActor(ctx context.Context, actor room.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// GetActor returns the authenticated actor, if any
func GetActor(ctx context.Context) (room.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(room.Actor)
	return actor, ok
}

// MustGetActor returns the authenticated actor or panics
func MustGetActor(ctx context.Context) room.Actor {
	actor, ok := GetActor(ctx)
	if !ok {
		panic("no actor in context - auth middleware not applied?")
	}
	return actor
}
