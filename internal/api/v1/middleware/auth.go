package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/services/session"
	"github.com/hbs-1991/XM-Port-Tm-sub002/pkg/httpext"
)

type contextKey string

const (
	sessionKey contextKey = "session"
)

// RequireSession is the route guard for dashboard pages. Resolving the session
// triggers the transparent token refresh; anything short of an authenticated
// session answers 401 with a login redirect hint. Raw upstream status codes
// never reach the UI.
func RequireSession(sessionService *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionService.Current(r.Context(), w, r)
			if err != nil {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("Session resolution failed")
				httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if sess == nil {
				httpext.JsonErrorWithDetails(w, http.StatusUnauthorized, httpext.ErrorResponse{
					Error:            "unauthenticated",
					ErrorDescription: "Session is missing or expired",
					RedirectTo:       config.GetLoginRedirect(),
				})
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole restricts a route to sessions carrying the given role. Must be
// layered inside RequireSession.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r)
			if sess == nil {
				log.Error().Str("path", r.URL.Path).Msg("RequireRole used without RequireSession")
				httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if sess.Role != role {
				log.Warn().
					Str("required_role", role).
					Str("session_role", sess.Role).
					Str("path", r.URL.Path).
					Msg("Access denied - session missing required role")
				httpext.JsonError(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSession retrieves the resolved session from the request context
func GetSession(r *http.Request) *session.Session {
	if sess, ok := r.Context().Value(sessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}
