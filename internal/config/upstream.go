package config

import (
	"sync"
	"time"
)

// The gateway only ever talks to the XM-Port platform services over HTTP.
// Each upstream is addressed by a base URL; request bodies and paths live in
// the infrastructure clients.

var (
	upstreamMu sync.RWMutex

	identityBaseURL = GetEnvOrDefault("IDENTITY_BASE_URL", "")
	pipelineBaseURL = GetEnvOrDefault("PIPELINE_BASE_URL", "")
	billingBaseURL  = GetEnvOrDefault("BILLING_BASE_URL", "")
)

// GetIdentityBaseURL returns the base URL of the identity service
func GetIdentityBaseURL() string {
	upstreamMu.RLock()
	defer upstreamMu.RUnlock()
	return identityBaseURL
}

// SetIdentityBaseURL temporarily changes the identity base URL and returns a function to restore it
// This is primarily used for testing
func SetIdentityBaseURL(url string) func() {
	upstreamMu.Lock()
	previous := identityBaseURL
	identityBaseURL = url
	upstreamMu.Unlock()

	return func() {
		upstreamMu.Lock()
		identityBaseURL = previous
		upstreamMu.Unlock()
	}
}

// GetPipelineBaseURL returns the base URL of the document-processing service
func GetPipelineBaseURL() string {
	upstreamMu.RLock()
	defer upstreamMu.RUnlock()
	return pipelineBaseURL
}

// SetPipelineBaseURL temporarily changes the pipeline base URL and returns a function to restore it
// This is primarily used for testing
func SetPipelineBaseURL(url string) func() {
	upstreamMu.Lock()
	previous := pipelineBaseURL
	pipelineBaseURL = url
	upstreamMu.Unlock()

	return func() {
		upstreamMu.Lock()
		pipelineBaseURL = previous
		upstreamMu.Unlock()
	}
}

// GetBillingBaseURL returns the base URL of the credits/billing service
func GetBillingBaseURL() string {
	upstreamMu.RLock()
	defer upstreamMu.RUnlock()
	return billingBaseURL
}

// SetBillingBaseURL temporarily changes the billing base URL and returns a function to restore it
// This is primarily used for testing
func SetBillingBaseURL(url string) func() {
	upstreamMu.Lock()
	previous := billingBaseURL
	billingBaseURL = url
	upstreamMu.Unlock()

	return func() {
		upstreamMu.Lock()
		billingBaseURL = previous
		upstreamMu.Unlock()
	}
}

// GetUpstreamTimeout returns the per-request timeout for upstream HTTP calls
func GetUpstreamTimeout() time.Duration {
	return time.Duration(parseEnvInt("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second
}
