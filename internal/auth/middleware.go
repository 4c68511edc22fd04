package auth

import (
	"context"
	"net/http"
)

// SessionCookie is the name of the HttpOnly cookie carrying the JWT.
const SessionCookie = "session"

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write
// session values in the request context — no string-key collisions.
type contextKey string

const sessionKey contextKey = "session"

// RoleResolver resolves a user's current role from the directory.
//
// RequireAdmin takes this interface instead of trusting anything embedded
// in the token: a week-old cookie must not grant admin to someone who was
// demoted yesterday, and must not deny it to someone promoted today.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (string, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the "session" cookie, validates it, and stores the
// session in the request context. A missing cookie and an invalid one are
// distinct 401 reasons (no_credential vs invalid_credential) so the
// frontend can tell "never logged in" from "session went bad".
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				writeAuthError(w, "no_credential", "authentication required")
				return
			}

			sess, err := tokens.Validate(cookie.Value)
			if err != nil {
				// Expired, tampered, wrong secret, garbage — all the same
				// to the client.
				writeAuthError(w, "invalid_credential", "session is invalid or expired")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the session if a valid cookie is present but never
// blocks the request. Handlers check SessionFromContext to see whether the
// caller is anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				if sess, err := tokens.Validate(cookie.Value); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionKey, sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates admin routes. Must be mounted AFTER RequireAuth.
// The role comes from a live directory lookup, never from the token.
func RequireAdmin(roles RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				writeAuthError(w, "no_credential", "authentication required")
				return
			}

			role, err := roles.ResolveRole(r.Context(), sess.UserID)
			if err != nil {
				// A verified token whose user no longer exists is a stale
				// or forged credential, not a server error.
				writeAuthError(w, "invalid_credential", "session does not resolve to a user")
				return
			}

			if role != "admin" {
				writeJSONError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext retrieves the verified session from the request
// context. Returns (nil, false) for anonymous requests.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}

// UserIDFromContext is a convenience wrapper for handlers that only need
// the user ID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return sess.UserID, true
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	writeJSONError(w, http.StatusUnauthorized, code, message)
}

// writeJSONError keeps middleware rejections in the same JSON error shape
// the handler layer uses, without importing it.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + code + `","message":"` + message + `"}`))
}
