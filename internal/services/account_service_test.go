package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"tripwise/internal/models/request_models"
	mem "tripwise/pkg/memcache"
	"tripwise/pkg/utils"
)

func newTestAccountService() (AccountServiceInterface, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, utils.NewTokenIssuer("test-secret", time.Hour), mem.NewRefreshTokens(), 24*time.Hour, zap.NewNop())
	return svc, repo
}

func TestAccountService_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, request_models.SignUpRequest{Email: " Traveler@Example.com ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "traveler@example.com", registered.User.Email)
	assert.Equal(t, "traveler", registered.User.DisplayName)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.Equal(t, int64(3600), registered.ExpiresIn)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	_, err = svc.Register(ctx, request_models.SignUpRequest{Email: "traveler@example.com", Password: "other"})
	assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)

	loggedIn, err := svc.Login(ctx, request_models.LoginRequest{Email: "TRAVELER@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, request_models.LoginRequest{Email: "traveler@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, request_models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestAccountService_RefreshRotatesToken(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	auth, err := svc.Register(ctx, request_models.SignUpRequest{Email: "a@b.c", Password: "pw123456", DisplayName: "Ann"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, auth.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, auth.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, "Ann", rotated.User.DisplayName)

	_, err = svc.Refresh(ctx, auth.RefreshToken)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestAccountService_LogoutOnlyRevokesOwnToken(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	alice, err := svc.Register(ctx, request_models.SignUpRequest{Email: "alice@x.io", Password: "pw123456"})
	require.NoError(t, err)
	bob, err := svc.Register(ctx, request_models.SignUpRequest{Email: "bob@x.io", Password: "pw123456"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, bob.User.ID, alice.RefreshToken))
	_, err = svc.Refresh(ctx, alice.RefreshToken)
	require.NoError(t, err, "another user's logout must not revoke the token")

	require.NoError(t, svc.Logout(ctx, bob.User.ID, bob.RefreshToken))
	_, err = svc.Refresh(ctx, bob.RefreshToken)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestAccountService_Me(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	auth, err := svc.Register(ctx, request_models.SignUpRequest{Email: "me@x.io", Password: "pw123456"})
	require.NoError(t, err)

	user, err := svc.Me(ctx, auth.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@x.io", user.Email)

	_, err = svc.Me(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	_, err = svc.Me(ctx, "4b0f3c4e-2f7e-4f55-9d55-0d3f2a1b9c10")
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)
}
