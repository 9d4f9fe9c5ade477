package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	errNoSession          = errors.New("no active session")
	errSessionInvalidated = errors.New("session invalidated")
)

// SessionStore remembers the active token id per role and subject.
// A newer login replaces the previous session.
type SessionStore interface {
	Register(ctx context.Context, role Role, subject, jti string, ttl time.Duration) error
	Active(ctx context.Context, role Role, subject string) (string, error)
	Revoke(ctx context.Context, role Role, subject string) error
}

// RedisSessionStore keeps sessions in Redis with the token expiry as TTL.
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore creates a new RedisSessionStore.
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Register(ctx context.Context, role Role, subject, jti string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, config.CacheKey.SessionKey(string(role), subject), jti, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Active(ctx context.Context, role Role, subject string) (string, error) {
	jti, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(string(role), subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errNoSession
		}
		return "", fmt.Errorf("check session: %w", err)
	}
	return jti, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, role Role, subject string) error {
	return s.rdb.Del(ctx, config.CacheKey.SessionKey(string(role), subject)).Err()
}

// MemorySessionStore is a process-local SessionStore. Expiry is not enforced;
// the token's own exp claim still applies.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]string{}}
}

func (s *MemorySessionStore) Register(_ context.Context, role Role, subject, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[config.CacheKey.SessionKey(string(role), subject)] = jti
	return nil
}

func (s *MemorySessionStore) Active(_ context.Context, role Role, subject string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jti, ok := s.sessions[config.CacheKey.SessionKey(string(role), subject)]
	if !ok {
		return "", errNoSession
	}
	return jti, nil
}

func (s *MemorySessionStore) Revoke(_ context.Context, role Role, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, config.CacheKey.SessionKey(string(role), subject))
	return nil
}
