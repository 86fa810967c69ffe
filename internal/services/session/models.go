package session

import (
	"time"
)

// Session is the single record of an authenticated browser session. It is
// created on login, mutated in place by refresh, and destroyed on logout or
// irrecoverable refresh failure. The token pair is only ever replaced as a
// unit.
type Session struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Tier      string `json:"tier"`
	Credits   int64  `json:"credits"`

	AccessToken          string    `json:"access_token"`
	RefreshToken         string    `json:"refresh_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`

	CreatedAt time.Time `json:"created_at"`
}

// View is the session as the UI shell sees it. Tokens never leave the gateway.
type View struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Tier      string    `json:"tier"`
	Credits   int64     `json:"credits"`
	ExpiresAt time.Time `json:"expires_at"`
}

// View strips the credentials from a session.
func (s *Session) View() View {
	return View{
		UserID:    s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		Role:      s.Role,
		Tier:      s.Tier,
		Credits:   s.Credits,
		ExpiresAt: s.AccessTokenExpiresAt,
	}
}
