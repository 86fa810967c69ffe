package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/redis"
)

// Store holds session records keyed by session ID. It is the single source of
// truth for session state; the cookie only carries the session ID. Get returns
// (nil, nil) for a missing session.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Set(ctx context.Context, sess *Session) error
	Clear(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

const redisKeyPrefix = "session:"

// Redis Store implementation
func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := rs.redisService.Get(ctx, redisKeyPrefix+sessionID)
	if err != nil {
		if redis.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}

	return &sess, nil
}

func (rs *RedisStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	// TTL slightly outlives the access token so a near-expiry record is still
	// there for the refresh attempt.
	ttl := config.GetSessionLifetime() + config.GetRefreshWindow()
	return rs.redisService.Set(ctx, redisKeyPrefix+sess.SessionID, string(data), ttl)
}

func (rs *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, redisKeyPrefix+sessionID)
}

// Memory Store implementation
func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	sess, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}

	// Copy so callers never mutate the stored record without going through Set.
	copied := *sess
	return &copied, nil
}

func (ms *MemoryStore) Set(ctx context.Context, sess *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	copied := *sess
	ms.sessions[sess.SessionID] = &copied
	return nil
}

func (ms *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}
