package connections

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Manager tracks which user each live job-stream connection belongs to.
type Manager struct {
	connections sync.Map // *websocket.Conn -> user ID
	timeouts    TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// Register adds a connection for the given user
func (m *Manager) Register(conn *websocket.Conn, userID string) {
	m.connections.Store(conn, userID)
}

// Unregister removes a connection
func (m *Manager) Unregister(conn *websocket.Conn) {
	m.connections.Delete(conn)
}

// Count returns the current number of active connections
func (m *Manager) Count() int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// CountForUser returns how many connections a single user holds
func (m *Manager) CountForUser(userID string) int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		if value == userID {
			count++
		}
		return true
	})
	return count
}

// Has checks if a specific connection is registered
func (m *Manager) Has(conn *websocket.Conn) bool {
	_, exists := m.connections.Load(conn)
	return exists
}

// Timeouts returns the current timeout configuration
func (m *Manager) Timeouts() TimeoutConfig {
	return m.timeouts
}
