package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "owner@retailsense.test",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSession_LoginLogout(t *testing.T) {
	s := New()
	assert.False(t, s.Authenticated())
	assert.False(t, s.IsExpired())

	s.Login("abc", time.Hour)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "abc", s.Token())

	s.Logout()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.True(t, s.ExpiresAt().IsZero())
}

func TestSession_ExpiresInWins(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	s.now = fixedClock(now)

	s.Login(signedToken(t, now.Add(-time.Hour)), 24*time.Hour)
	assert.False(t, s.IsExpired())
	assert.Equal(t, now.Add(24*time.Hour), s.ExpiresAt())

	s.now = fixedClock(now.Add(25 * time.Hour))
	assert.True(t, s.IsExpired())
}

func TestSession_FallsBackToTokenExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	s.now = fixedClock(now)

	s.Login(signedToken(t, now.Add(time.Hour)), 0)
	assert.False(t, s.IsExpired())

	s.now = fixedClock(now.Add(2 * time.Hour))
	assert.True(t, s.IsExpired())
}

func TestSession_OpaqueTokenNeverExpires(t *testing.T) {
	s := New()
	s.Login("not-a-jwt", 0)

	assert.True(t, s.Authenticated())
	assert.False(t, s.IsExpired())
}
