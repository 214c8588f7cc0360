package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/timer"
)

// Workspace keeps the open drafts of every session in memory. A draft is
// visible only to the session that opened it and is evicted after it has
// been idle for the configured TTL.
type Workspace[D any] struct {
	mu            sync.RWMutex
	entries       map[uuid.UUID]workspaceEntry[D]
	idle          *timer.Debouncer
	maxPerSession int
	onEvict       func(id uuid.UUID, draft D)
}

type workspaceEntry[D any] struct {
	owner string
	draft D
}

// WorkspaceOption configures a Workspace
type WorkspaceOption[D any] func(*Workspace[D])

// WithEvictionHandler is called after a draft is evicted for inactivity
func WithEvictionHandler[D any](fn func(id uuid.UUID, draft D)) WorkspaceOption[D] {
	return func(w *Workspace[D]) { w.onEvict = fn }
}

// WithMaxPerSession caps how many drafts one session may hold; 0 means no cap
func WithMaxPerSession[D any](n int) WorkspaceOption[D] {
	return func(w *Workspace[D]) { w.maxPerSession = n }
}

// NewWorkspace creates a workspace whose drafts expire after idleTTL without access
func NewWorkspace[D any](idleTTL time.Duration, opts ...WorkspaceOption[D]) *Workspace[D] {
	w := &Workspace[D]{
		entries: make(map[uuid.UUID]workspaceEntry[D]),
		idle:    timer.NewDebouncer(idleTTL),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Put stores a draft for owner
func (w *Workspace[D]) Put(owner string, id uuid.UUID, draft D) error {
	w.mu.Lock()
	if w.maxPerSession > 0 && w.countLocked(owner) >= w.maxPerSession {
		w.mu.Unlock()
		return shared.ErrTooManyDrafts
	}
	w.entries[id] = workspaceEntry[D]{owner: owner, draft: draft}
	w.touch(id)
	w.mu.Unlock()
	return nil
}

// Get returns owner's draft and restarts its idle timer. A draft owned by
// another session is reported as not found.
func (w *Workspace[D]) Get(owner string, id uuid.UUID) (D, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entry, ok := w.entries[id]
	if !ok || entry.owner != owner {
		var zero D
		return zero, shared.ErrDraftNotFound
	}
	w.touch(id)
	return entry.draft, nil
}

// Remove discards owner's draft. Returns false if there was none.
func (w *Workspace[D]) Remove(owner string, id uuid.UUID) bool {
	w.mu.Lock()
	entry, ok := w.entries[id]
	if !ok || entry.owner != owner {
		w.mu.Unlock()
		return false
	}
	delete(w.entries, id)
	w.idle.Cancel(id.String())
	w.mu.Unlock()
	return true
}

// RemoveOwner discards every draft of a session and returns how many there were
func (w *Workspace[D]) RemoveOwner(owner string) int {
	w.mu.Lock()
	removed := 0
	for id, entry := range w.entries {
		if entry.owner == owner {
			delete(w.entries, id)
			w.idle.Cancel(id.String())
			removed++
		}
	}
	w.mu.Unlock()
	return removed
}

// Len returns the number of open drafts
func (w *Workspace[D]) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}

// Close stops every idle timer
func (w *Workspace[D]) Close() {
	w.idle.Stop()
}

func (w *Workspace[D]) countLocked(owner string) int {
	n := 0
	for _, entry := range w.entries {
		if entry.owner == owner {
			n++
		}
	}
	return n
}

// touch re-arms the idle timer; callers hold w.mu so that a draft removed
// concurrently is never re-armed. The timer callback takes w.mu only after
// the debouncer has released its own lock.
func (w *Workspace[D]) touch(id uuid.UUID) {
	w.idle.Schedule(id.String(), func() { w.evict(id) })
}

func (w *Workspace[D]) evict(id uuid.UUID) {
	w.mu.Lock()
	entry, ok := w.entries[id]
	if ok {
		delete(w.entries, id)
	}
	w.mu.Unlock()

	if ok && w.onEvict != nil {
		w.onEvict(id, entry.draft)
	}
}
