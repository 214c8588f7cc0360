package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_FiresOnceAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	for i := 0; i < 5; i++ {
		d.Schedule("draft-1", func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 1, d.Len())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending("draft-1"))
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var a, b atomic.Int32

	d.Schedule("a", func() { a.Add(1) })
	d.Schedule("b", func() { b.Add(1) })

	assert.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	d.Schedule("k", func() { calls.Add(1) })
	assert.True(t, d.Cancel("k"))
	assert.False(t, d.Cancel("k"))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32

	d.Schedule("k", func() { calls.Add(1) })
	d.Stop()
	d.Schedule("k", func() { calls.Add(1) })

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.Zero(t, d.Len())
}

func TestDebouncer_FiredTimerDoesNotRunRescheduledKey(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	var first, second atomic.Int32

	d.Schedule("k", func() { first.Add(1) })

	// Hold the lock until the first timer has fired and is waiting on it,
	// then cancel and re-arm the key with a long delay.
	d.mu.Lock()
	time.Sleep(30 * time.Millisecond)
	d.cancelLocked("k")
	d.delay = time.Hour
	d.scheduleLocked("k", func() { second.Add(1) })
	d.mu.Unlock()

	assert.Never(t, func() bool { return first.Load() > 0 || second.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.True(t, d.Pending("k"))
	d.Stop()
}
