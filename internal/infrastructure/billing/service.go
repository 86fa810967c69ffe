package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
)

// ErrUnauthorized marks an access token the billing service rejected.
var ErrUnauthorized = errors.New("billing: unauthorized")

// Service is the HTTP client for the external credits ledger. The gateway only
// reads balances; all mutations happen inside the platform.
type Service struct {
	client  *http.Client
	baseURL string
}

// Balance is the credit-balance widget's payload.
type Balance struct {
	CreditsRemaining     int64  `json:"credits_remaining"`
	CreditsUsedThisMonth int64  `json:"credits_used_this_month"`
	Tier                 string `json:"subscription_tier"`
}

func NewService() *Service {
	baseURL := config.GetBillingBaseURL()

	if baseURL == "" {
		return nil
	}

	return &Service{
		client:  &http.Client{Timeout: config.GetUpstreamTimeout()},
		baseURL: baseURL,
	}
}

// GetBalance fetches the current credit balance with the session's access token.
func (s *Service) GetBalance(ctx context.Context, accessToken string) (*Balance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v1/credits/balance", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach billing service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("billing service returned status %d", resp.StatusCode)
	}

	var balance Balance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return nil, fmt.Errorf("failed to decode balance: %w", err)
	}

	return &balance, nil
}
