package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/identity"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/redis"
)

// IdentityClient is the slice of the identity service the lifecycle manager
// needs. Satisfied by *identity.Service.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (*identity.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	Profile(ctx context.Context, accessToken string) (*identity.User, error)
}

// CookieClaims is what the signed session cookie carries: the session ID and
// nothing the UI could misuse. All real state lives in the store.
type CookieClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	UserID    string `json:"uid,omitempty"`
}

// Service owns the session lifecycle: establish on login, transparent refresh
// near expiry, teardown on any credential failure. A broken session is never
// presented as authenticated.
type Service struct {
	store    Store
	identity IdentityClient
	now      func() time.Time
}

func NewService(redisService *redis.Service, identityClient IdentityClient) *Service {
	var store Store
	if redisService != nil {
		store = &RedisStore{redisService: redisService}
	} else {
		store = newMemoryStore()
	}

	return &Service{
		store:    store,
		identity: identityClient,
		now:      time.Now,
	}
}

// Establish logs the user in and creates the session: token pair persisted to
// the store, signed session-ID cookie set on the response.
func (s *Service) Establish(ctx context.Context, w http.ResponseWriter, email, password string) (*Session, error) {
	result, err := s.identity.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		SessionID:            uuid.New().String(),
		UserID:               result.User.ID,
		Email:                result.User.Email,
		Name:                 result.User.Name,
		Role:                 result.User.Role,
		Tier:                 result.User.Tier,
		Credits:              result.User.CreditsRemaining,
		AccessToken:          result.Tokens.AccessToken,
		RefreshToken:         result.Tokens.RefreshToken,
		AccessTokenExpiresAt: now.Add(time.Duration(result.Tokens.ExpiresIn) * time.Second),
		CreatedAt:            now,
	}

	// Hydrate the profile before anything is persisted. A user the identity
	// service cannot resolve gets no session at all.
	if err := s.hydrate(ctx, sess); err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, sess); err != nil {
		return nil, err
	}

	if err := s.issueCookie(w, sess); err != nil {
		_ = s.store.Clear(ctx, sess.SessionID)
		return nil, err
	}

	log.Info().Str("user_id", sess.UserID).Str("session_id", sess.SessionID).Msg("Session established")
	return sess, nil
}

// Current resolves the session for a request. Within the refresh window it
// attempts exactly one refresh; any failure tears the session down. Returns
// (nil, nil) when no authenticated session exists.
func (s *Service) Current(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	sessionID := s.readSessionID(r)
	if sessionID == "" {
		return nil, nil
	}

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		s.clearCookie(w)
		return nil, nil
	}

	now := s.now()
	if now.After(sess.AccessTokenExpiresAt.Add(-config.GetRefreshWindow())) {
		sess = s.refresh(ctx, w, sess)
	}

	return sess, nil
}

// refresh performs the single refresh attempt. On success both tokens are
// replaced together and the new expiry is computed from the issue time. On any
// failure the session is torn down and nil is returned.
func (s *Service) refresh(ctx context.Context, w http.ResponseWriter, sess *Session) *Session {
	pair, err := s.identity.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", sess.SessionID).
			Msg("Token refresh failed - tearing session down")
		s.teardown(ctx, w, sess.SessionID)
		return nil
	}

	now := s.now()
	sess.AccessToken = pair.AccessToken
	sess.RefreshToken = pair.RefreshToken
	sess.AccessTokenExpiresAt = now.Add(time.Duration(pair.ExpiresIn) * time.Second)

	// Keep displayed user attributes fresh. Unauthorized or vanished users are
	// handled exactly like a failed refresh.
	if err := s.hydrate(ctx, sess); err != nil {
		s.teardown(ctx, w, sess.SessionID)
		return nil
	}

	if err := s.store.Set(ctx, sess); err != nil {
		log.Error().Err(err).Str("session_id", sess.SessionID).Msg("Failed to persist refreshed session")
		s.teardown(ctx, w, sess.SessionID)
		return nil
	}

	if err := s.issueCookie(w, sess); err != nil {
		s.teardown(ctx, w, sess.SessionID)
		return nil
	}

	log.Debug().Str("session_id", sess.SessionID).Time("expires_at", sess.AccessTokenExpiresAt).Msg("Session refreshed")
	return sess
}

// hydrate pulls the current profile with the access token and folds it into
// the session. Token and missing-user errors propagate; transient transport
// errors only leave the cached attributes stale.
func (s *Service) hydrate(ctx context.Context, sess *Session) error {
	user, err := s.identity.Profile(ctx, sess.AccessToken)
	if err != nil {
		if errors.Is(err, identity.ErrTokenInvalid) || errors.Is(err, identity.ErrUserNotFound) {
			return err
		}
		log.Warn().Err(err).Str("session_id", sess.SessionID).Msg("Profile hydration skipped - upstream unreachable")
		return nil
	}

	sess.UserID = user.ID
	sess.Email = user.Email
	sess.Name = user.Name
	sess.Role = user.Role
	sess.Tier = user.Tier
	sess.Credits = user.CreditsRemaining
	return nil
}

// Destroy logs out: remote revocation is best-effort, local teardown is
// unconditional. Returns the post-logout destination for the UI.
func (s *Service) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) string {
	if sessionID := s.readSessionID(r); sessionID != "" {
		sess, err := s.store.Get(ctx, sessionID)
		if err == nil && sess != nil {
			if err := s.identity.Logout(ctx, sess.AccessToken); err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("Remote logout failed - continuing local teardown")
			}
		}
		s.teardown(ctx, w, sessionID)
	} else {
		s.clearCookie(w)
	}

	return config.GetPostLogoutRedirect()
}

func (s *Service) teardown(ctx context.Context, w http.ResponseWriter, sessionID string) {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to clear session from store")
	}
	s.clearCookie(w)
}

func (s *Service) issueCookie(w http.ResponseWriter, sess *Session) error {
	claims := &CookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(sess.AccessTokenExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ID:        sess.SessionID,
		},
		SessionID: sess.SessionID,
		UserID:    sess.UserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(config.GetSessionSecret())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.AccessTokenExpiresAt,
	})
	return nil
}

func (s *Service) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  s.now().Add(-1 * time.Hour),
	})
}

// readSessionID extracts and verifies the session ID from the cookie. An
// absent, malformed or expired cookie reads as no session.
func (s *Service) readSessionID(r *http.Request) string {
	cookie, err := r.Cookie(config.GetSessionCookieName())
	if err != nil {
		return ""
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &CookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetSessionSecret(), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(*CookieClaims)
	if !ok {
		return ""
	}

	return claims.SessionID
}
