package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	t.Run("allows up to max hits", func(t *testing.T) {
		limiter := NewLimiter(time.Minute, 3)

		for i := 0; i < 3; i++ {
			if !limiter.Allow("10.0.0.1") {
				t.Fatalf("Expected hit %d to be allowed", i+1)
			}
		}

		if limiter.Allow("10.0.0.1") {
			t.Error("Expected hit over the limit to be rejected")
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewLimiter(time.Minute, 1)

		if !limiter.Allow("10.0.0.1") {
			t.Error("Expected first key to be allowed")
		}
		if !limiter.Allow("10.0.0.2") {
			t.Error("Expected second key to be allowed")
		}
		if limiter.Allow("10.0.0.1") {
			t.Error("Expected first key to be rejected on second hit")
		}
	})

	t.Run("hits expire with the window", func(t *testing.T) {
		limiter := NewLimiter(10*time.Millisecond, 1)

		if !limiter.Allow("10.0.0.1") {
			t.Error("Expected first hit to be allowed")
		}
		if limiter.Allow("10.0.0.1") {
			t.Error("Expected second hit to be rejected inside the window")
		}

		time.Sleep(15 * time.Millisecond)

		if !limiter.Allow("10.0.0.1") {
			t.Error("Expected hit to be allowed after the window passed")
		}
	})

	t.Run("reset forgets the key", func(t *testing.T) {
		limiter := NewLimiter(time.Minute, 1)

		limiter.Allow("10.0.0.1")
		limiter.Reset("10.0.0.1")

		if !limiter.Allow("10.0.0.1") {
			t.Error("Expected hit to be allowed after reset")
		}
	})
}
