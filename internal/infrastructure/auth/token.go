package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the fields the back-office puts in its access tokens. Only the
// ones the BFF reads are declared.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// SubjectID returns sub, falling back to user_id
func (c *Claims) SubjectID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

// GetExpiresAtTime returns the expiration time, zero when the token has none
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenParser reads back-office bearer tokens. The BFF does not issue tokens:
// with a shared secret it verifies the HMAC signature, without one it only
// decodes the claims and checks expiry, leaving authentication to the
// back-office on the first proxied call.
type TokenParser struct {
	secret []byte
	now    func() time.Time
}

// NewTokenParser creates a parser; an empty secret disables signature checks
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Verifies reports whether signatures are checked
func (p *TokenParser) Verifies() bool {
	return len(p.secret) > 0
}

// Parse decodes a raw token (with or without the "Bearer " prefix)
func (p *TokenParser) Parse(raw string) (*Claims, error) {
	tokenString := StripBearer(raw)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	if p.Verifies() {
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return p.secret, nil
		}, jwt.WithTimeFunc(p.now))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrExpiredToken
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return claims, nil
	}

	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp := claims.GetExpiresAtTime(); !exp.IsZero() && !p.now().Before(exp) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

// StripBearer removes a case-insensitive "Bearer " prefix and surrounding spaces
func StripBearer(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
