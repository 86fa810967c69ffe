package config

import "time"

var (
	// SessionCookieName is the name of the session cookie
	// Default to "xmport_session" if not set in environment
	SessionCookieName = GetEnvOrDefault("SESSION_COOKIE_NAME", "xmport_session")
)

// GetSessionCookieName returns the configured session cookie name
func GetSessionCookieName() string {
	return SessionCookieName
}

// SetSessionCookieName temporarily changes the session cookie name and returns a function to restore it
// This is primarily used for testing
func SetSessionCookieName(name string) func() {
	previous := SessionCookieName
	SessionCookieName = name

	return func() {
		SessionCookieName = previous
	}
}

// GetSessionLifetime returns the absolute lifetime of the session cookie.
// Matches the access token lifetime issued by the identity service.
func GetSessionLifetime() time.Duration {
	return time.Duration(parseEnvInt("SESSION_LIFETIME_SECONDS", 900)) * time.Second
}

// GetRefreshWindow returns how close to expiry a session check triggers a token refresh
func GetRefreshWindow() time.Duration {
	return time.Duration(parseEnvInt("SESSION_REFRESH_WINDOW_SECONDS", 120)) * time.Second
}

// GetPostLogoutRedirect returns where the UI is sent after a logout
func GetPostLogoutRedirect() string {
	return GetEnvOrDefault("POST_LOGOUT_REDIRECT", "/auth/login")
}

// GetLoginRedirect returns where unauthenticated requests are pointed
func GetLoginRedirect() string {
	return GetEnvOrDefault("LOGIN_REDIRECT", "/auth/login")
}
