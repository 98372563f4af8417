// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/climate-api/internal/config"
	"github.com/angelamos/climate-api/internal/core"
)

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "jwt_private.pem")
	publicPath := filepath.Join(dir, "jwt_public.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewTokenManager(config.AuthConfig{
		PrivateKeyPath:    privatePath,
		PublicKeyPath:     publicPath,
		AccessTokenExpire: 15 * time.Minute,
		Issuer:            "climate-api-test",
		Audience:          "climate-api-test",
		ResetSecret:       "test-reset-secret-0123456789abcdef",
		ResetTokenExpire:  10 * time.Minute,
	})
	require.NoError(t, err)

	return manager
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	manager := newTestTokenManager(t)

	signed, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: "user-123",
		Role:   "admin",
		Email:  "alice@example.com",
	})
	require.NoError(t, err)

	claims, err := manager.VerifyAccessToken(context.Background(), signed)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.JTI)
	assert.False(t, claims.ExpiresAt.IsZero())
}

func TestAccessToken_UniqueJTI(t *testing.T) {
	t.Parallel()

	manager := newTestTokenManager(t)
	claims := AccessTokenClaims{UserID: "user-123", Role: "user", Email: "a@b.c"}

	first, err := manager.CreateAccessToken(claims)
	require.NoError(t, err)
	second, err := manager.CreateAccessToken(claims)
	require.NoError(t, err)

	firstParsed, err := manager.VerifyAccessToken(context.Background(), first)
	require.NoError(t, err)
	secondParsed, err := manager.VerifyAccessToken(context.Background(), second)
	require.NoError(t, err)

	assert.NotEqual(t, firstParsed.JTI, secondParsed.JTI)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	t.Parallel()

	manager := newTestTokenManager(t)

	_, err := manager.VerifyAccessToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAccessToken_WrongKey(t *testing.T) {
	t.Parallel()

	signer := newTestTokenManager(t)
	verifier := newTestTokenManager(t)

	signed, err := signer.CreateAccessToken(AccessTokenClaims{
		UserID: "user-123",
		Role:   "user",
		Email:  "a@b.c",
	})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	t.Parallel()

	manager := newTestTokenManager(t)

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	signed, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: "user-123",
		Role:   "user",
		Email:  "a@b.c",
	})
	require.NoError(t, err)

	manager.now = func() time.Time {
		return issuedAt.Add(manager.config.AccessTokenExpire + time.Second)
	}

	_, err = manager.VerifyAccessToken(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestResetToken_RoundTrip(t *testing.T) {
	t.Parallel()

	manager := newTestTokenManager(t)

	token, err := manager.CreateResetToken("user-456")
	require.NoError(t, err)

	userID, err := manager.VerifyResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-456", userID)
}

func TestResetToken_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	manager := newTestTokenManager(t)

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	token, err := manager.CreateResetToken("user-456")
	require.NoError(t, err)

	manager.now = func() time.Time {
		return issuedAt.Add(manager.config.ResetTokenExpire - time.Second)
	}
	userID, err := manager.VerifyResetToken(token)
	require.NoError(t, err, "one second before expiry is still valid")
	assert.Equal(t, "user-456", userID)

	manager.now = func() time.Time {
		return issuedAt.Add(manager.config.ResetTokenExpire + time.Second)
	}
	_, err = manager.VerifyResetToken(token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid,
		"expiry reports the same error as a forged token")
}

func TestResetToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestTokenManager(t)

	dir := t.TempDir()
	require.NoError(t, GenerateKeyPair(
		filepath.Join(dir, "private.pem"),
		filepath.Join(dir, "public.pem"),
	))

	other, err := NewTokenManager(config.AuthConfig{
		PrivateKeyPath:    filepath.Join(dir, "private.pem"),
		PublicKeyPath:     filepath.Join(dir, "public.pem"),
		AccessTokenExpire: 15 * time.Minute,
		Issuer:            "climate-api-test",
		Audience:          "climate-api-test",
		ResetSecret:       "another-reset-secret-0123456789ab",
		ResetTokenExpire:  10 * time.Minute,
	})
	require.NoError(t, err)

	token, err := issuer.CreateResetToken("user-456")
	require.NoError(t, err)

	_, err = other.VerifyResetToken(token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

// A reset token must never be accepted as a session, and an access token
// must never reset a password, even though both are well-formed JWTs.
func TestTokenKinds_NotInterchangeable(t *testing.T) {
	t.Parallel()

	manager := newTestTokenManager(t)

	resetToken, err := manager.CreateResetToken("user-456")
	require.NoError(t, err)

	_, err = manager.VerifyAccessToken(context.Background(), resetToken)
	assert.Error(t, err)

	accessToken, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: "user-456",
		Role:   "user",
		Email:  "a@b.c",
	})
	require.NoError(t, err)

	_, err = manager.VerifyResetToken(accessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}
