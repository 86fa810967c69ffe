package billing

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

	restore := config.SetBillingBaseURL(server.URL)
	t.Cleanup(restore)

	svc := NewService()
	require.NotNil(t, svc)
	return svc
}

func TestGetBalance(t *testing.T) {
	t.Run("returns balance with bearer token", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/credits/balance", r.URL.Path)
			require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(Balance{
				CreditsRemaining:     120,
				CreditsUsedThisMonth: 30,
				Tier:                 "pro",
			})
		}))

		balance, err := svc.GetBalance(context.Background(), "access-1")
		require.NoError(t, err)
		assert.Equal(t, int64(120), balance.CreditsRemaining)
		assert.Equal(t, "pro", balance.Tier)
	})

	t.Run("401 maps to ErrUnauthorized", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := svc.GetBalance(context.Background(), "stale")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
