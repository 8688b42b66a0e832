package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pratik-mahalle/sitevoice/internal/auth"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// SessionKey is the context key for the verified session
	SessionKey ContextKey = "session"

	// SessionCookie is the cookie Clerk's frontend SDK stores the session token in
	SessionCookie = "__session"
)

// sessionToken reads a bearer token, falling back to the Clerk session cookie
func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware returns a middleware that rejects requests without a valid Clerk session
func AuthMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			session, err := verifier.Verify(r.Context(), token)
			if err != nil {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			AddLogField(w, "user_id", session.UserID)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// OptionalAuthMiddleware is like AuthMiddleware but doesn't reject requests without tokens
func OptionalAuthMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := sessionToken(r); token != "" {
				if session, err := verifier.Verify(r.Context(), token); err == nil {
					AddLogField(w, "user_id", session.UserID)
					r = r.WithContext(WithSession(r.Context(), session))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithSession stores a verified session in the context
func WithSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession extracts the verified session from the request context
func GetSession(r *http.Request) (*auth.Session, bool) {
	session, ok := r.Context().Value(SessionKey).(*auth.Session)
	return session, ok && session != nil
}

// GetUserID extracts the Clerk user ID from the request context
func GetUserID(r *http.Request) (string, bool) {
	session, ok := GetSession(r)
	if !ok {
		return "", false
	}
	return session.UserID, true
}
