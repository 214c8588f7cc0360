package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/backoffice/internal/domain/shared"
)

type fakeDraft struct{ name string }

func TestWorkspace_OwnerIsolation(t *testing.T) {
	ws := NewWorkspace[*fakeDraft](time.Minute)
	defer ws.Close()

	id := uuid.New()
	require.NoError(t, ws.Put("alice", id, &fakeDraft{name: "a"}))

	got, err := ws.Get("alice", id)
	require.NoError(t, err)
	assert.Equal(t, "a", got.name)

	_, err = ws.Get("bob", id)
	assert.ErrorIs(t, err, shared.ErrDraftNotFound)

	assert.False(t, ws.Remove("bob", id))
	assert.True(t, ws.Remove("alice", id))
	_, err = ws.Get("alice", id)
	assert.ErrorIs(t, err, shared.ErrDraftNotFound)
}

func TestWorkspace_MaxPerSession(t *testing.T) {
	ws := NewWorkspace(time.Minute, WithMaxPerSession[*fakeDraft](2))
	defer ws.Close()

	require.NoError(t, ws.Put("alice", uuid.New(), &fakeDraft{}))
	require.NoError(t, ws.Put("alice", uuid.New(), &fakeDraft{}))
	assert.ErrorIs(t, ws.Put("alice", uuid.New(), &fakeDraft{}), shared.ErrTooManyDrafts)
	assert.NoError(t, ws.Put("bob", uuid.New(), &fakeDraft{}))
}

func TestWorkspace_RemoveOwner(t *testing.T) {
	ws := NewWorkspace[*fakeDraft](time.Minute)
	defer ws.Close()

	_ = ws.Put("alice", uuid.New(), &fakeDraft{})
	_ = ws.Put("alice", uuid.New(), &fakeDraft{})
	_ = ws.Put("bob", uuid.New(), &fakeDraft{})

	assert.Equal(t, 2, ws.RemoveOwner("alice"))
	assert.Equal(t, 1, ws.Len())
}

func TestWorkspace_IdleEviction(t *testing.T) {
	var evicted atomic.Int32
	ws := NewWorkspace(20*time.Millisecond, WithEvictionHandler(func(uuid.UUID, *fakeDraft) {
		evicted.Add(1)
	}))
	defer ws.Close()

	id := uuid.New()
	require.NoError(t, ws.Put("alice", id, &fakeDraft{}))

	assert.Eventually(t, func() bool { return ws.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), evicted.Load())
}

func TestWorkspace_RemoveRacingGetLeavesNoTimer(t *testing.T) {
	ws := NewWorkspace[*fakeDraft](time.Hour)
	defer ws.Close()

	for i := 0; i < 200; i++ {
		id := uuid.New()
		require.NoError(t, ws.Put("alice", id, &fakeDraft{name: "a"}))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = ws.Get("alice", id)
		}()
		go func() {
			defer wg.Done()
			ws.Remove("alice", id)
		}()
		wg.Wait()
	}

	assert.Zero(t, ws.Len())
	assert.Zero(t, ws.idle.Len())
}
