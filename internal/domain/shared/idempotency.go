package shared

import (
	"context"
	"time"
)

// InFlightGuard serializes submissions of the same draft. A key is held from
// the moment a submission is accepted until the remote call completes.
type InFlightGuard interface {
	// Acquire marks key as in flight for at most ttl.
	// Returns true if the key was free, false if another submission holds it
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees key so a later submission can proceed
	Release(ctx context.Context, key string) error

	// Close closes the guard and releases resources
	Close() error
}

// InFlightConfig holds configuration for submission guarding
type InFlightConfig struct {
	// TTL bounds how long a crashed submission can keep a key held.
	// Default: 2 minutes
	TTL time.Duration
}

// DefaultInFlightConfig returns the default in-flight configuration
func DefaultInFlightConfig() InFlightConfig {
	return InFlightConfig{
		TTL: 2 * time.Minute,
	}
}
