// Package timer provides a keyed, cancellable debouncer.
package timer

import (
	"sync"
	"time"
)

// Debouncer runs a callback once a key has been quiet for a delay. Each key
// has at most one pending timer: scheduling a key again replaces its timer.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingCall
	seq     uint64
	closed  bool
}

type pendingCall struct {
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Schedule (re)arms the timer for key. fn runs on its own goroutine after
// the quiet period unless the key is scheduled again or cancelled first.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scheduleLocked(key, fn)
}

// scheduleLocked arms a timer tagged with a debouncer-wide sequence number,
// so a timer that fired before being replaced never matches its successor,
// even when the key was cancelled in between.
func (d *Debouncer) scheduleLocked(key string, fn func()) {
	if d.closed {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	d.seq++
	seq := d.seq
	call := &pendingCall{seq: seq}
	call.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current, ok := d.pending[key]
		if !ok || current.seq != seq {
			// superseded after the timer already fired
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
	})
	d.pending[key] = call
}

// Cancel drops the pending timer for key. Returns true if one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked(key)
}

func (d *Debouncer) cancelLocked(key string) bool {
	call, ok := d.pending[key]
	if !ok {
		return false
	}
	call.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether key has a timer armed
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Len returns the number of armed timers
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels every pending timer; later Schedule calls are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, call := range d.pending {
		call.timer.Stop()
		delete(d.pending, key)
	}
	d.closed = true
}
