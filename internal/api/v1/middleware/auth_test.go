package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/identity"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/services/session"
)

type staticIdentity struct {
	role string
}

func (s *staticIdentity) Login(ctx context.Context, email, password string) (*identity.LoginResult, error) {
	return &identity.LoginResult{
		User: identity.User{ID: "u-1", Email: email, Role: s.role, Tier: "pro", CreditsRemaining: 10},
		Tokens: identity.TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "bearer",
			ExpiresIn:    900,
		},
	}, nil
}

func (s *staticIdentity) Refresh(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	return &identity.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2", ExpiresIn: 900}, nil
}

func (s *staticIdentity) Logout(ctx context.Context, accessToken string) error {
	return nil
}

func (s *staticIdentity) Profile(ctx context.Context, accessToken string) (*identity.User, error) {
	return &identity.User{ID: "u-1", Email: "a@b.com", Name: "Ana", Role: s.role, Tier: "pro", CreditsRemaining: 10}, nil
}

func loggedInRequest(t *testing.T, svc *session.Service, path string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	if _, err := svc.Establish(context.Background(), w, "a@b.com", "goodpass"); err != nil {
		t.Fatalf("Establish failed: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(cookies[0])
	return req
}

func TestRequireSession(t *testing.T) {
	t.Run("authenticated request reaches the handler with a session", func(t *testing.T) {
		svc := session.NewService(nil, &staticIdentity{role: "user"})
		req := loggedInRequest(t, svc, "/api/v1/dashboard/metrics")

		var gotSession *session.Session
		handler := RequireSession(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSession = GetSession(r)
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if gotSession == nil || gotSession.UserID != "u-1" {
			t.Errorf("Expected the session in context, got %+v", gotSession)
		}
	})

	t.Run("missing cookie answers 401 with a login redirect hint", func(t *testing.T) {
		svc := session.NewService(nil, &staticIdentity{role: "user"})

		handler := RequireSession(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be reached")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/metrics", nil))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("Expected status 401, got %d", w.Code)
		}

		var body struct {
			Error      string `json:"error"`
			RedirectTo string `json:"redirect_to"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode error body: %v", err)
		}
		if body.Error != "unauthenticated" {
			t.Errorf("Expected error unauthenticated, got %q", body.Error)
		}
		if body.RedirectTo != "/auth/login" {
			t.Errorf("Expected redirect hint /auth/login, got %q", body.RedirectTo)
		}
	})

	t.Run("garbage cookie answers 401", func(t *testing.T) {
		svc := session.NewService(nil, &staticIdentity{role: "user"})

		handler := RequireSession(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be reached")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/metrics", nil)
		req.AddCookie(&http.Cookie{Name: config.GetSessionCookieName(), Value: "not-a-jwt"})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("matching role passes", func(t *testing.T) {
		svc := session.NewService(nil, &staticIdentity{role: "admin"})
		req := loggedInRequest(t, svc, "/api/v1/admin")

		handler := RequireSession(svc)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("mismatched role is forbidden", func(t *testing.T) {
		svc := session.NewService(nil, &staticIdentity{role: "user"})
		req := loggedInRequest(t, svc, "/api/v1/admin")

		handler := RequireSession(svc)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be reached")
		})))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})
}
