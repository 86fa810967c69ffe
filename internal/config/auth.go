package config

import (
	"sync"
)

var (
	sessionSecretMu sync.RWMutex
	// SessionSecret is the secret key used to sign the session cookie JWT
	// In production, this should be loaded from environment variables
	SessionSecret = []byte(GetEnvOrDefault("SESSION_SECRET", "your-256-bit-secret"))
)

// SetSessionSecret temporarily changes the cookie-signing secret and returns a function to restore it
// This is primarily used for testing
func SetSessionSecret(secret []byte) func() {
	sessionSecretMu.Lock()
	previous := SessionSecret
	SessionSecret = secret
	sessionSecretMu.Unlock()

	return func() {
		sessionSecretMu.Lock()
		SessionSecret = previous
		sessionSecretMu.Unlock()
	}
}

// GetSessionSecret returns the current cookie-signing secret in a thread-safe manner
func GetSessionSecret() []byte {
	sessionSecretMu.RLock()
	defer sessionSecretMu.RUnlock()
	return SessionSecret
}
