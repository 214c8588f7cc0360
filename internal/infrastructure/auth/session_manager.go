package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erp/backoffice/internal/domain/identity"
)

// ClearHook runs after a session is cleared, e.g. to drop its drafts
type ClearHook func(ctx context.Context, sessionID string)

// SessionManager turns bearer tokens into sessions and tears them down
type SessionManager struct {
	parser *TokenParser
	store  SessionStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	hooks []ClearHook
}

// NewSessionManager creates a manager. ttl bounds how long a hydrated
// session is cached; the token's own expiry still applies.
func NewSessionManager(parser *TokenParser, store SessionStore, ttl time.Duration, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{
		parser: parser,
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// OnClear registers a hook run by Clear
func (m *SessionManager) OnClear(hook ClearHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// SessionID derives the stable session id of a token
func SessionID(token string) string {
	sum := sha256.Sum256([]byte(StripBearer(token)))
	return hex.EncodeToString(sum[:16])
}

// Init returns the session for a bearer token, hydrating it from the store
// when possible and parsing the token otherwise
func (m *SessionManager) Init(ctx context.Context, rawToken string) (identity.Session, error) {
	token := StripBearer(rawToken)
	if token == "" {
		return identity.Session{}, identity.ErrSessionMissing
	}
	id := SessionID(token)

	session, err := m.store.Load(ctx, id)
	switch {
	case err == nil:
		if session.ExpiredAt(m.now()) {
			_ = m.store.Delete(ctx, id)
			return identity.Session{}, identity.ErrSessionExpired
		}
		return session, nil
	case !errors.Is(err, ErrSessionNotFound):
		// Store trouble must not lock people out; parse the token instead
		m.logger.Warn("session store unavailable, parsing token", zap.Error(err))
	}

	claims, err := m.parser.Parse(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return identity.Session{}, identity.ErrSessionExpired
		}
		return identity.Session{}, err
	}

	session, err = identity.NewSession(id, token, claims.SubjectID(), claims.Username, claims.GetExpiresAtTime())
	if err != nil {
		return identity.Session{}, err
	}

	if err := m.store.Save(ctx, session, m.cacheTTL(session)); err != nil {
		m.logger.Warn("failed to cache session", zap.Error(err))
	}
	return session, nil
}

// Clear removes a session and runs the clear hooks
func (m *SessionManager) Clear(ctx context.Context, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	m.mu.RLock()
	hooks := append([]ClearHook(nil), m.hooks...)
	m.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, sessionID)
	}

	m.logger.Info("session cleared", zap.String("session_id", sessionID))
	return nil
}

// HandleUnauthorized clears a session the back-office rejected. Its
// signature matches the backoffice client's unauthorized hook.
func (m *SessionManager) HandleUnauthorized(ctx context.Context, session identity.Session) {
	if session.ID == "" {
		return
	}
	if err := m.Clear(context.WithoutCancel(ctx), session.ID); err != nil {
		m.logger.Warn("failed to clear rejected session", zap.Error(err))
	}
}

func (m *SessionManager) cacheTTL(session identity.Session) time.Duration {
	if session.ExpiresAt.IsZero() {
		return m.ttl
	}
	remaining := session.ExpiresAt.Sub(m.now())
	if remaining < m.ttl {
		return remaining
	}
	return m.ttl
}
