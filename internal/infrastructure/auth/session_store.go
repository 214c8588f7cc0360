package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erp/backoffice/internal/domain/identity"
)

// ErrSessionNotFound is returned by a store that has no entry for the id
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps hydrated sessions between requests so a token is parsed
// once per TTL and a cleared session stays cleared
type SessionStore interface {
	Save(ctx context.Context, session identity.Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (identity.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore implements SessionStore using Redis
type RedisSessionStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisSessionStore creates a store on an existing client
func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{
		client:    client,
		keyPrefix: "bff:session:",
	}
}

type storedSession struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Save stores the session for ttl
func (s *RedisSessionStore) Save(ctx context.Context, session identity.Session, ttl time.Duration) error {
	data, err := json.Marshal(storedSession{
		Token:     session.Token,
		Subject:   session.Subject,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load fetches a session by id
func (s *RedisSessionStore) Load(ctx context.Context, id string) (identity.Session, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return identity.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return identity.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return identity.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return identity.NewSession(id, stored.Token, stored.Subject, stored.Username, stored.ExpiresAt)
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// InMemorySessionStore implements SessionStore in process memory.
// Useful for development and single-instance deployments.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	session   identity.Session
	expiresAt time.Time
}

// NewInMemorySessionStore creates an empty store
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

// Save stores the session for ttl
func (s *InMemorySessionStore) Save(_ context.Context, session identity.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = memorySession{session: session, expiresAt: s.now().Add(ttl)}

	// Lazy sweep of expired entries
	now := s.now()
	for id, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
	return nil
}

// Load fetches a session by id
func (s *InMemorySessionStore) Load(_ context.Context, id string) (identity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		return identity.Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Delete removes a session
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

var (
	_ SessionStore = (*RedisSessionStore)(nil)
	_ SessionStore = (*InMemorySessionStore)(nil)
)
