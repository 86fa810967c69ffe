package connections

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestManager(t *testing.T) {
	t.Run("register and unregister", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		conn := &websocket.Conn{}

		manager.Register(conn, "u-1")
		if !manager.Has(conn) {
			t.Error("Expected connection to be registered")
		}
		if manager.Count() != 1 {
			t.Errorf("Expected count 1, got %d", manager.Count())
		}

		manager.Unregister(conn)
		if manager.Has(conn) {
			t.Error("Expected connection to be unregistered")
		}
		if manager.Count() != 0 {
			t.Errorf("Expected count 0, got %d", manager.Count())
		}
	})

	t.Run("count per user", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)

		first := &websocket.Conn{}
		second := &websocket.Conn{}
		other := &websocket.Conn{}

		manager.Register(first, "u-1")
		manager.Register(second, "u-1")
		manager.Register(other, "u-2")

		if got := manager.CountForUser("u-1"); got != 2 {
			t.Errorf("Expected 2 connections for u-1, got %d", got)
		}
		if got := manager.CountForUser("u-2"); got != 1 {
			t.Errorf("Expected 1 connection for u-2, got %d", got)
		}
		if got := manager.CountForUser("u-3"); got != 0 {
			t.Errorf("Expected 0 connections for u-3, got %d", got)
		}
	})

	t.Run("timeouts are exposed", func(t *testing.T) {
		timeouts := TimeoutConfig{
			PongWait:   10 * time.Second,
			PingPeriod: 9 * time.Second,
			WriteWait:  3 * time.Second,
		}
		manager := NewManager(timeouts)

		if manager.Timeouts() != timeouts {
			t.Errorf("Expected timeouts %+v, got %+v", timeouts, manager.Timeouts())
		}
	})

	t.Run("concurrent registration", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		done := make(chan bool)

		for i := 0; i < 10; i++ {
			go func() {
				conn := &websocket.Conn{}
				manager.Register(conn, "u-1")
				manager.Has(conn)
				manager.Unregister(conn)
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		if manager.Count() != 0 {
			t.Errorf("Expected count 0 after churn, got %d", manager.Count())
		}
	})
}
