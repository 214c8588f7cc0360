package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/erp/backoffice/internal/domain/shared"
)

const defaultInFlightPrefix = "bff:inflight:"

// releaseScript deletes the key only if this instance still holds it, so an
// expired hold taken over by another instance is never released by mistake
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisInFlightGuard implements shared.InFlightGuard with SET NX, shared by
// every instance pointed at the same Redis
type RedisInFlightGuard struct {
	client    redis.UniversalClient
	keyPrefix string

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisInFlightGuard creates a guard on an existing client
func NewRedisInFlightGuard(client redis.UniversalClient, keyPrefix string) *RedisInFlightGuard {
	if keyPrefix == "" {
		keyPrefix = defaultInFlightPrefix
	}
	return &RedisInFlightGuard{
		client:    client,
		keyPrefix: keyPrefix,
		tokens:    make(map[string]string),
	}
}

// Acquire holds key for ttl using SET NX PX
func (g *RedisInFlightGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire in-flight key: %w", err)
	}
	if ok {
		g.mu.Lock()
		g.tokens[key] = token
		g.mu.Unlock()
	}
	return ok, nil
}

// Release frees key if this instance holds it
func (g *RedisInFlightGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	token, ok := g.tokens[key]
	delete(g.tokens, key)
	g.mu.Unlock()
	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisInFlightGuard) Close() error {
	return g.client.Close()
}

var _ shared.InFlightGuard = (*RedisInFlightGuard)(nil)
