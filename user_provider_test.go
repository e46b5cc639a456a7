package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/opinioncollector/go-auth"
)

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: hash,
		Role:         auth.RoleUser,
		Provider:     auth.ProviderLocal,
		Active:       true,
	}
}

func TestUserProviderVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful verification", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)
		user := activeUser(t, "password123")

		store.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.Same(t, user, got)
		store.AssertExpectations(t)
	})

	t.Run("Unknown email", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		store.On("GetByEmail", ctx, "nobody@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		got, err := provider.VerifyIdentity(ctx, "nobody@example.com", "password123")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		store.AssertExpectations(t)
	})

	t.Run("Wrong password", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)
		user := activeUser(t, "correct_password")

		store.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Locked account wins over bad password", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)
		user := activeUser(t, "password123")
		user.Locked = true

		store.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrAccountLocked)
	})

	t.Run("Disabled account", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)
		user := activeUser(t, "password123")
		user.Active = false

		store.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrAccountDisabled)
	})

	t.Run("Deleted account rejected after password check", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)
		user := activeUser(t, "password123")
		user.Deleted = true

		store.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrAccountDeleted)
	})

	t.Run("Deleted account with wrong password looks like bad credentials", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)
		user := activeUser(t, "password123")
		user.Deleted = true

		store.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Federated account has no password", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)
		user := activeUser(t, "password123")
		user.PasswordHash = ""
		user.Provider = auth.ProviderGoogle

		store.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("Store failure is not a credential error", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		store.On("GetByEmail", ctx, "test@example.com").
			Return(nil, errors.New("connection refused")).Once()

		got, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Nil(t, got)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}
