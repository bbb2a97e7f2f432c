// Package session holds the bearer credential used against the RetailSense backend.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Session is created once and handed to the transport; login and logout
// swap the credential in place.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

func New() *Session {
	return &Session{now: time.Now}
}

// Login stores token. A positive expiresIn wins over the token's own exp claim.
func (s *Session) Login(token string, expiresIn time.Duration) {
	var expiresAt time.Time
	if expiresIn > 0 {
		expiresAt = s.now().Add(expiresIn)
	} else {
		expiresAt = tokenExpiry(token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}

// Token returns the current credential, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// IsExpired reports whether a known expiry has passed. A session without
// expiry information never expires client-side; the backend stays the authority.
func (s *Session) IsExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiresAt.IsZero() {
		return false
	}
	return !s.now().Before(s.expiresAt)
}

// ExpiresAt returns the known expiry, zero when unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// tokenExpiry reads the exp claim without verifying the signature; only the
// backend holds the signing key.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
