package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
)

// NewRedisClient connects to Redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// GuardFactory picks the in-flight guard implementation from configuration
type GuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// GuardFactoryOption configures a GuardFactory
type GuardFactoryOption func(*GuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) GuardFactoryOption {
	return func(f *GuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory guard. Default is true.
func WithInMemoryFallback(allow bool) GuardFactoryOption {
	return func(f *GuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewGuardFactory creates a new factory
func NewGuardFactory(cfg config.RedisConfig, opts ...GuardFactoryOption) *GuardFactory {
	f := &GuardFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateGuard returns a Redis guard when Redis is enabled and reachable,
// otherwise an in-memory one (if fallback is allowed)
func (f *GuardFactory) CreateGuard(ctx context.Context) (shared.InFlightGuard, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory in-flight guard")
		return NewInMemoryInFlightGuard(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis in-flight guard", zap.String("addr", f.redisConfig.Addr()))
		f.client = client
		return NewRedisInFlightGuard(client, ""), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for in-flight guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory in-flight guard. "+
		"Two instances may then submit the same draft concurrently.",
		zap.Error(err),
	)
	return NewInMemoryInFlightGuard(), nil
}

// RedisClient returns the client behind the guard built by CreateGuard, or
// nil when the guard lives in memory. Closing the guard closes the client.
func (f *GuardFactory) RedisClient() *redis.Client {
	return f.client
}
