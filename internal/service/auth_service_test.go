package service

import (
	"testing"
	"time"

	"jelajah/config"
	"jelajah/internal/auth"
	"jelajah/internal/domain"
	"jelajah/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "jelajah-test",
		},
	}
	db := newTestDB(t)
	return NewAuthService(cfg, repository.NewUserRepository(db)), cfg
}

func TestRegisterAndLogin(t *testing.T) {
	svc, cfg := newAuthService(t)

	u, access, refresh, err := svc.Register("ana@example.com", "ana", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	got, _, _, err := svc.Login("ana@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, _, _, err = svc.Login("ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)
	_, _, _, err := svc.Register("ana@example.com", "ana", "password123", "")
	require.NoError(t, err)

	_, _, _, err = svc.Register("ana@example.com", "other", "password123", "")
	assert.ErrorIs(t, err, ErrEmailExists)
	_, _, _, err = svc.Register("other@example.com", "ana", "password123", "")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegisterNeverGrantsElevatedRole(t *testing.T) {
	svc, _ := newAuthService(t)
	u, _, _, err := svc.Register("sneaky@example.com", "sneaky", "password123", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)

	p, _, _, err := svc.Register("host@example.com", "host", "password123", domain.RolePlayer)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlayer, p.Role)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc, cfg := newAuthService(t)
	u, _, refresh, err := svc.Register("ana@example.com", "ana", "password123", "")
	require.NoError(t, err)

	access, err := svc.Refresh(refresh)
	require.NoError(t, err)
	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = svc.Refresh("not-a-token")
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	u, _, _, err := svc.Register("ana@example.com", "ana", "password123", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "newpassword1"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "password123", "newpassword1"))

	_, _, _, err = svc.Login("ana@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("ana@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestGoogleLoginLinksExistingAccount(t *testing.T) {
	svc, _ := newAuthService(t)
	u, _, _, err := svc.Register("ana@example.com", "ana", "password123", "")
	require.NoError(t, err)

	linked, _, _, isNew, err := svc.LoginWithGoogle("google-123", "ana@example.com", "Ana", "", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, linked.ID)

	// Second login finds the account by Google ID directly.
	again, _, _, isNew, err := svc.LoginWithGoogle("google-123", "ana@example.com", "Ana", "", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, again.ID)

	// A fresh Google identity creates a new USER account.
	fresh, _, _, isNew, err := svc.LoginWithGoogle("google-456", "newcomer@example.com", "New Comer", "", "")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, domain.RoleUser, fresh.Role)
}
