package identity

import (
	"errors"
	"strings"
	"time"
)

// Session errors
var (
	ErrSessionMissing = errors.New("session: no bearer token")
	ErrSessionExpired = errors.New("session: token has expired")
)

// Session is the authenticated caller as seen by every outbound call to the
// back-office. It is built once per request and passed explicitly.
type Session struct {
	// ID keys the session in the store and owns the drafts it opens
	ID        string
	Token     string
	Subject   string
	Username  string
	ExpiresAt time.Time
}

// NewSession creates a session from a bearer token and its expiry
func NewSession(id, token, subject, username string, expiresAt time.Time) (Session, error) {
	if strings.TrimSpace(token) == "" {
		return Session{}, ErrSessionMissing
	}
	return Session{
		ID:        id,
		Token:     token,
		Subject:   subject,
		Username:  username,
		ExpiresAt: expiresAt,
	}, nil
}

// IsZero reports whether the session is empty
func (s Session) IsZero() bool {
	return s.Token == ""
}

// ExpiredAt reports whether the session is expired at now.
// A zero ExpiresAt never expires.
func (s Session) ExpiredAt(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Authorization returns the Authorization header value
func (s Session) Authorization() string {
	return "Bearer " + s.Token
}
