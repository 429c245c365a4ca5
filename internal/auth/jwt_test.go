package auth

import (
	"testing"
	"time"

	"jelajah/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "jelajah-test",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, "visitor@example.com", "USER")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "visitor@example.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "jelajah-test", claims.Issuer)
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 1, "a@example.com", "ADMIN")
	require.NoError(t, err)

	other := testJWTConfig()
	other.AccessSecret = "different"
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiry = -time.Minute
	token, err := GenerateAccessToken(cfg, 1, "a@example.com", "USER")
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateRefreshToken(cfg, 17)
	require.NoError(t, err)

	id, err := ParseRefreshToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(17), id)

	// A refresh token is not an access token and vice versa.
	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
