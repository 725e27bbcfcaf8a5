package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/task_management_sample/internal/auth"
	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/repository/memory"
)

func newAuthService(t *testing.T) (AuthService, *auth.TokenCodec, domain.UserRepository) {
	t.Helper()
	store := memory.NewStore()
	codec := auth.NewTokenCodec("test-secret")
	return NewAuthService(store.Users(), auth.SHA256Hasher{}, codec), codec, store.Users()
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, codec, users := newAuthService(t)

	user, token, err := svc.Register(ctx, domain.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Empty(t, user.PasswordHash)

	id, ok := codec.Verify(token)
	assert.True(t, ok)
	assert.Equal(t, user.ID, id)

	stored, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "fcf730b6d95236ecd3c9fc2d92d7b6b2bb061514961aec041d6c7a7192f592e4", stored.PasswordHash)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, _, err := svc.Register(ctx, domain.RegisterRequest{Name: "Other", Email: "ann@example.com", Password: "another1"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := []domain.RegisterRequest{
			{Email: "a@example.com", Password: "secret123"},
			{Name: "A", Password: "secret123"},
			{Name: "A", Email: "a@example.com"},
			{Name: "A", Email: "a@example.com", Password: "12345"},
		}
		for _, req := range cases {
			_, _, err := svc.Register(ctx, req)
			assert.ErrorIs(t, err, domain.ErrValidation, "%+v", req)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, codec, _ := newAuthService(t)

	registered, _, err := svc.Register(ctx, domain.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		user, token, err := svc.Login(ctx, domain.LoginRequest{Email: "ann@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)

		id, ok := codec.Verify(token)
		assert.True(t, ok)
		assert.Equal(t, registered.ID, id)
	})

	t.Run("WrongPasswordMatchesUnknownEmail", func(t *testing.T) {
		_, _, wrongPassword := svc.Login(ctx, domain.LoginRequest{Email: "ann@example.com", Password: "secret124"})
		_, _, unknownEmail := svc.Login(ctx, domain.LoginRequest{Email: "bob@example.com", Password: "secret123"})

		assert.ErrorIs(t, wrongPassword, domain.ErrUnauthorized)
		assert.Equal(t, wrongPassword, unknownEmail)
		assert.EqualError(t, wrongPassword, "Invalid email or password")
	})

	t.Run("MissingFields", func(t *testing.T) {
		_, _, err := svc.Login(ctx, domain.LoginRequest{Email: "ann@example.com"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService(t)

	registered, _, err := svc.Register(ctx, domain.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, *registered, *me)

	_, err = svc.Me(ctx, registered.ID+1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
