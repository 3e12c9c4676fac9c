package auth

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven-server/internal/domain"
)

func testKeys(t *testing.T) (access, refresh []byte) {
	t.Helper()

	access = make([]byte, 32)
	refresh = make([]byte, 32)
	_, err := rand.Read(access)
	require.NoError(t, err)
	_, err = rand.Read(refresh)
	require.NoError(t, err)
	return access, refresh
}

func testUser() *domain.User {
	return &domain.User{
		Entity: domain.Entity{ID: "user-abc"},
		Email:  "reader@example.com",
		Role:   domain.RoleUser,
	}
}

func TestAccessToken_Roundtrip(t *testing.T) {
	access, refresh := testKeys(t)
	svc, err := NewTokenService(access, refresh, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-abc", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	access, refresh := testKeys(t)

	// A negative lifetime mints a token whose expiration is already behind us.
	expired, err := NewTokenService(access, refresh, -time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	token, err := expired.GenerateAccessToken(testUser())
	require.NoError(t, err)

	svc, err := NewTokenService(access, refresh, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyRefreshToken_Expired(t *testing.T) {
	access, refresh := testKeys(t)

	// Signed eight days ago against a seven-day lifetime.
	stale, err := NewTokenService(access, refresh, 15*time.Minute, -24*time.Hour)
	require.NoError(t, err)

	token, err := stale.GenerateRefreshToken(testUser())
	require.NoError(t, err)

	svc, err := NewTokenService(access, refresh, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_RejectsRefreshToken(t *testing.T) {
	access, refresh := testKeys(t)
	svc, err := NewTokenService(access, refresh, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateRefreshToken(testUser())
	require.NoError(t, err)

	// Different key and audience; a refresh token must never pass as access.
	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyRefreshToken_RejectsAccessToken(t *testing.T) {
	access, refresh := testKeys(t)
	svc, err := NewTokenService(access, refresh, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_BadKeyLength(t *testing.T) {
	_, refresh := testKeys(t)

	_, err := NewTokenService([]byte("short"), refresh, 15*time.Minute, 7*24*time.Hour)
	assert.Error(t, err)
}
