package usecase

import (
	"context"
	"errors"
	"testing"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	auth := newAuthFixture(store)
	users := NewUserService(store.repo(), fixedClock, testLogger())

	laptop, err := auth.Register(ctx, &request.RegisterRequest{
		Name:     "Katherine Johnson",
		Email:    "katherine@example.com",
		Password: "secret123",
	}, ClientInfo{})
	require.NoError(t, err)
	phone, err := auth.Login(ctx, &request.LoginRequest{Email: "katherine@example.com", Password: "secret123"}, ClientInfo{})
	require.NoError(t, err)

	current, err := auth.Authenticate(ctx, phone.Token)
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := users.ChangePassword(ctx, current.UserID, current.SessionID, &request.ChangePasswordRequest{
			CurrentPassword: "guess1234",
			NewPassword:     "newsecret1",
		})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "CurrentPassword")
	})

	t.Run("new password must differ", func(t *testing.T) {
		err := users.ChangePassword(ctx, current.UserID, current.SessionID, &request.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "secret123",
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	require.NoError(t, users.ChangePassword(ctx, current.UserID, current.SessionID, &request.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret1",
	}))

	t.Run("other sessions are signed out", func(t *testing.T) {
		_, err := auth.Authenticate(ctx, laptop.Token)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = auth.Authenticate(ctx, phone.Token)
		require.NoError(t, err, "the session that changed the password stays valid")
	})

	t.Run("login uses the new password", func(t *testing.T) {
		_, err := auth.Login(ctx, &request.LoginRequest{Email: "katherine@example.com", Password: "secret123"}, ClientInfo{})
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = auth.Login(ctx, &request.LoginRequest{Email: "katherine@example.com", Password: "newsecret1"}, ClientInfo{})
		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := users.ChangePassword(ctx, uuid.New(), uuid.New(), &request.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "newsecret1",
		})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCountByRole(t *testing.T) {
	store := newStore()
	svc := NewUserService(store.repo(), fixedClock, testLogger())

	store.addUser(entity.RoleClient)
	store.addUser(entity.RoleClient)
	store.addUser(entity.RoleClient)
	store.addUser(entity.RoleVIP)

	counts, err := svc.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Client)
	assert.Equal(t, int64(1), counts.VIP)
	assert.Equal(t, int64(0), counts.Admin)
	assert.Equal(t, int64(4), counts.Total)
}
