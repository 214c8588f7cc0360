package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

type heldKey struct {
	expiresAt time.Time
}

// InMemoryInFlightGuard implements shared.InFlightGuard with a map.
// It only serializes submissions within one process.
type InMemoryInFlightGuard struct {
	mu        sync.Mutex
	held      map[string]heldKey
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryInFlightGuard creates the guard and starts its expiry sweeper
func NewInMemoryInFlightGuard() *InMemoryInFlightGuard {
	g := &InMemoryInFlightGuard{
		held:     make(map[string]heldKey),
		stopChan: make(chan struct{}),
	}
	g.wg.Add(1)
	go g.cleanupLoop(time.Minute)
	return g
}

// Acquire holds key for ttl; an expired hold counts as free
func (g *InMemoryInFlightGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if h, ok := g.held[key]; ok && now.Before(h.expiresAt) {
		return false, nil
	}
	g.held[key] = heldKey{expiresAt: now.Add(ttl)}
	return true, nil
}

// Release frees key
func (g *InMemoryInFlightGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (g *InMemoryInFlightGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// Size returns the number of held keys, expired ones included until swept
func (g *InMemoryInFlightGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}

func (g *InMemoryInFlightGuard) cleanupLoop(interval time.Duration) {
	defer g.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemoryInFlightGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for key, h := range g.held {
		if !now.Before(h.expiresAt) {
			delete(g.held, key)
		}
	}
}

var _ shared.InFlightGuard = (*InMemoryInFlightGuard)(nil)
