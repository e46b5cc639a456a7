package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserStore is the read surface the verifier needs
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider verifies credentials against the user store
type UserProvider struct {
	store  UserStore
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user and compare the password. Account state
// is checked before the password so a locked or disabled account surfaces as
// such regardless of the credentials. Deleted users pass base authentication
// and are rejected afterwards, indistinguishable from bad credentials to the
// caller of login.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (*User, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.Locked {
		return nil, ErrAccountLocked
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	// federated-only accounts have no hash and never pass password auth
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Deleted {
		return nil, ErrAccountDeleted
	}

	return user, nil
}

var _ CredentialVerifier = (*UserProvider)(nil)
