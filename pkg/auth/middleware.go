package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/bizdir/pkg/httpx"
	"github.com/ghuser/bizdir/pkg/logger"
)

// SessionName is the cookie name shared with the login flow that issues sessions.
const SessionName = "bizdir_session"

const (
	sessionUserIDKey = "user_id"
	sessionRoleKey   = "role"
)

// RequireAdmin is a chi middleware that enforces an admin session.
// It reads the session cookie, builds the Principal, and injects it into the request context.
// Returns 401 if the session is missing or invalid and 403 if the user is not an admin.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireAdmin(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userIDStr, ok := session.Values[sessionUserIDKey].(string)
			if !ok || userIDStr == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				log.WarnContext(r.Context(), "invalid user_id in session", "user_id", userIDStr, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			role, _ := session.Values[sessionRoleKey].(string)
			p := Principal{UserID: userID, Role: role}
			if !p.IsAdmin() {
				log.WarnContext(r.Context(), "non-admin session rejected", "user_id", userID, "role", role)
				httpx.JSONError(w, http.StatusForbidden, "admin role required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// StartSession writes a session for the given principal. The login flow that
// owns authentication calls this; tests use it to mint cookies.
func StartSession(w http.ResponseWriter, r *http.Request, store sessions.Store, p Principal) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return err
	}
	session.Values[sessionUserIDKey] = p.UserID.String()
	session.Values[sessionRoleKey] = p.Role
	return session.Save(r, w)
}

// EndSession deletes the principal's session from the store and expires the cookie.
func EndSession(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return err
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
