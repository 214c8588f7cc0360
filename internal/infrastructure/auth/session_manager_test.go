package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/backoffice/internal/domain/identity"
)

func newTestManager() (*SessionManager, *InMemorySessionStore) {
	store := NewInMemorySessionStore()
	return NewSessionManager(NewTokenParser(testSecret), store, time.Hour, nil), store
}

func TestSessionManager_Init(t *testing.T) {
	ctx := context.Background()

	t.Run("parses and caches", func(t *testing.T) {
		m, store := newTestManager()
		token := signToken(t, testSecret, claimsExpiringIn(time.Hour))

		session, err := m.Init(ctx, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, token, session.Token)
		assert.Equal(t, "42", session.Subject)
		assert.Equal(t, SessionID(token), session.ID)

		cached, err := store.Load(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.Token, cached.Token)
	})

	t.Run("same token yields same session", func(t *testing.T) {
		m, _ := newTestManager()
		token := signToken(t, testSecret, claimsExpiringIn(time.Hour))

		a, err := m.Init(ctx, token)
		require.NoError(t, err)
		b, err := m.Init(ctx, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		m, _ := newTestManager()
		_, err := m.Init(ctx, "")
		assert.ErrorIs(t, err, identity.ErrSessionMissing)
	})

	t.Run("expired token", func(t *testing.T) {
		m, _ := newTestManager()
		_, err := m.Init(ctx, signToken(t, testSecret, claimsExpiringIn(-time.Minute)))
		assert.ErrorIs(t, err, identity.ErrSessionExpired)
	})

	t.Run("expired cached session", func(t *testing.T) {
		m, store := newTestManager()
		token := "opaque"
		s, err := identity.NewSession(SessionID(token), token, "1", "", time.Now().Add(-time.Second))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, s, time.Hour))

		_, err = m.Init(ctx, token)
		assert.ErrorIs(t, err, identity.ErrSessionExpired)
	})
}

type failingStore struct{ *InMemorySessionStore }

func (failingStore) Load(context.Context, string) (identity.Session, error) {
	return identity.Session{}, errors.New("connection refused")
}

func TestSessionManager_StoreDownFallsBackToParse(t *testing.T) {
	m := NewSessionManager(NewTokenParser(testSecret), &failingStore{NewInMemorySessionStore()}, time.Hour, nil)

	session, err := m.Init(context.Background(), signToken(t, testSecret, claimsExpiringIn(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "42", session.Subject)
}

func TestSessionManager_Clear(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	var cleared []string
	m.OnClear(func(_ context.Context, id string) { cleared = append(cleared, id) })

	session, err := m.Init(ctx, signToken(t, testSecret, claimsExpiringIn(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx, session.ID))
	assert.Equal(t, []string{session.ID}, cleared)

	_, err = store.Load(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_HandleUnauthorized(t *testing.T) {
	m, _ := newTestManager()
	calls := 0
	m.OnClear(func(context.Context, string) { calls++ })

	m.HandleUnauthorized(context.Background(), identity.Session{})
	assert.Equal(t, 0, calls)

	m.HandleUnauthorized(context.Background(), identity.Session{ID: "abc", Token: "t"})
	assert.Equal(t, 1, calls)
}

func TestInMemorySessionStore_TTL(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()
	s, _ := identity.NewSession("id", "tok", "", "", time.Time{})

	require.NoError(t, store.Save(ctx, s, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := store.Load(ctx, "id")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStore_Interface(t *testing.T) {
	var _ SessionStore = (*RedisSessionStore)(nil)
}
