package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	restore := config.SetIdentityBaseURL(server.URL)
	t.Cleanup(restore)

	svc := NewService()
	require.NotNil(t, svc)
	return svc
}

func TestLogin(t *testing.T) {
	t.Run("successful login returns user and token pair", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/auth/login", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "a@b.com", req["email"])
			require.Equal(t, "goodpass", req["password"])

			json.NewEncoder(w).Encode(LoginResult{
				User: User{ID: "u-1", Email: "a@b.com", Role: "user", Tier: "pro", CreditsRemaining: 42},
				Tokens: TokenPair{
					AccessToken:  "access-1",
					RefreshToken: "refresh-1",
					TokenType:    "bearer",
					ExpiresIn:    900,
				},
			})
		}))

		result, err := svc.Login(context.Background(), "a@b.com", "goodpass")
		require.NoError(t, err)
		assert.Equal(t, "u-1", result.User.ID)
		assert.Equal(t, "access-1", result.Tokens.AccessToken)
		assert.Equal(t, "refresh-1", result.Tokens.RefreshToken)
		assert.Equal(t, 900, result.Tokens.ExpiresIn)
	})

	t.Run("401 maps to ErrInvalidCredentials", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := svc.Login(context.Background(), "a@b.com", "badpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("incomplete token pair is rejected", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(LoginResult{
				User:   User{ID: "u-1"},
				Tokens: TokenPair{AccessToken: "access-only", ExpiresIn: 900},
			})
		}))

		_, err := svc.Login(context.Background(), "a@b.com", "goodpass")
		assert.Error(t, err)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("successful refresh returns validated pair", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/auth/refresh", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "refresh-1", req["refresh_token"])

			json.NewEncoder(w).Encode(TokenPair{
				AccessToken:  "access-2",
				RefreshToken: "refresh-2",
				TokenType:    "bearer",
				ExpiresIn:    900,
			})
		}))

		pair, err := svc.Refresh(context.Background(), "refresh-1")
		require.NoError(t, err)
		assert.Equal(t, "access-2", pair.AccessToken)
		assert.Equal(t, "refresh-2", pair.RefreshToken)
	})

	t.Run("401 maps to ErrTokenInvalid", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := svc.Refresh(context.Background(), "stale")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("404 maps to ErrUserNotFound", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := svc.Refresh(context.Background(), "orphaned")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("zero expiry is rejected at the boundary", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(TokenPair{
				AccessToken:  "access-2",
				RefreshToken: "refresh-2",
			})
		}))

		_, err := svc.Refresh(context.Background(), "refresh-1")
		assert.Error(t, err)
	})
}

func TestLogout(t *testing.T) {
	t.Run("sends bearer token", func(t *testing.T) {
		var gotAuth string
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		}))

		err := svc.Logout(context.Background(), "access-1")
		require.NoError(t, err)
		assert.Equal(t, "Bearer access-1", gotAuth)
	})

	t.Run("non-2xx surfaces as error", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		err := svc.Logout(context.Background(), "access-1")
		assert.Error(t, err)
	})
}

func TestProfile(t *testing.T) {
	t.Run("returns user attributes", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/users/profile", r.URL.Path)
			require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(User{
				ID: "u-1", Email: "a@b.com", Name: "Ana", Role: "user",
				Tier: "pro", CreditsRemaining: 41,
			})
		}))

		user, err := svc.Profile(context.Background(), "access-1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, int64(41), user.CreditsRemaining)
	})

	t.Run("401 maps to ErrTokenInvalid", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := svc.Profile(context.Background(), "stale")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("404 maps to ErrUserNotFound", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := svc.Profile(context.Background(), "access-1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
