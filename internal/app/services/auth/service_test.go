package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainuser "threadly/internal/domain/user"
	"threadly/internal/infra/security"
	"threadly/internal/infra/storage/memory"
)

func newService() (*Service, *memory.UserRepository) {
	users := memory.NewUserRepository()
	svc := &Service{
		Users:     users,
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour),
	}
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{
		Email:    "Seller@Example.com",
		Name:     "Priya",
		Password: "correcthorse",
		Role:     domainuser.RoleSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, "seller@example.com", result.User.Email)
	assert.Equal(t, domainuser.RoleSeller, result.User.Role)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	login, err := svc.Login(ctx, LoginParams{Email: "seller@example.com", Password: "correcthorse"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	_, err = svc.Login(ctx, LoginParams{Email: "seller@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "correcthorse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "a@b.c",
		Name:     "A",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "B", Password: "longenough"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)

	// an access token is not a refresh token
	_, err = svc.Refresh(ctx, result.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeactivatedAccountCannotAuthenticate(t *testing.T) {
	svc, users := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	user := result.User
	user.Active = false
	require.NoError(t, users.Save(ctx, user))

	_, err = svc.Login(ctx, LoginParams{Email: "a@b.c", Password: "longenough"})
	assert.ErrorIs(t, err, ErrAccountDeactivated)

	_, err = svc.Refresh(ctx, result.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrAccountDeactivated)

	_, err = svc.Me(ctx, user.ID)
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}
