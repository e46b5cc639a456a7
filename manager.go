package auth

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Manager orchestrates the account and session lifecycle. Every operation
// runs its store writes inside a single transaction; failures roll back all
// of them.
type Manager struct {
	repo         RepositoryManager
	verifier     CredentialVerifier
	tokenService TokenService
	mailer       Mailer
	federator    IdentityFederator
	config       Config
	logger       Logger
}

// ManagerOption configures the Manager
type ManagerOption func(*Manager)

// NewManager creates a lifecycle Manager on top of the repositories
func NewManager(repo RepositoryManager, tokenService TokenService, cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:         repo,
		tokenService: tokenService,
		config:       cfg,
		mailer:       logMailer{logger: defLogger{}},
		logger:       defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.verifier == nil {
		m.verifier = NewUserProvider(repo.Users())
	}

	return m
}

// WithMailer sets the mail collaborator used for registration emails
func WithMailer(mailer Mailer) ManagerOption {
	return func(m *Manager) {
		if mailer != nil {
			m.mailer = mailer
		}
	}
}

// WithFederator sets the OAuth2 federator used for Google login
func WithFederator(f IdentityFederator) ManagerOption {
	return func(m *Manager) {
		m.federator = f
	}
}

// WithVerifier overrides the credential verifier
func WithVerifier(v CredentialVerifier) ManagerOption {
	return func(m *Manager) {
		m.verifier = v
	}
}

// WithManagerLogger overrides the default logger
func WithManagerLogger(l Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Login authenticates an email/password pair and issues a session: a signed
// access credential plus a persisted single-use refresh token.
func (m *Manager) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := m.verifier.VerifyIdentity(ctx, email, password)
	if err != nil {
		m.logger.Info("login rejected", "email", email, "error", err.Error())
		return nil, err
	}

	var result *LoginResult
	err = m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err = m.issueSessionTx(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to issue session")
	}

	return result, nil
}

// RegisterUserMessage carries a registration request
type RegisterUserMessage struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// Register creates an inactive local account, issues a verification token,
// and hands the confirmation link to the mail collaborator. Any persistence
// failure during creation is reported as ErrEmailAlreadyRegistered; the
// duplicate email constraint is by far the most common cause but not the
// only possible one.
func (m *Manager) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		return nil, wrapInternal(err, "failed to hash password")
	}

	user := &User{
		Email:        msg.Email,
		Username:     msg.Username,
		PasswordHash: hash,
		Role:         RoleUser,
		Provider:     ProviderLocal,
		Active:       false,
	}

	err = m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = m.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return ErrEmailAlreadyRegistered
		}

		verification, err := m.repo.Tokens().IssueTx(ctx, tx, user, TokenVerification)
		if err != nil {
			return wrapInternal(err, "failed to issue verification token")
		}

		link := m.confirmationLink("/confirm/register", verification.Value)
		if err := m.mailer.SendRegistrationEmail(ctx, user.Email, user.Username, link); err != nil {
			return wrapInternal(err, "failed to send registration email")
		}

		return nil
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, wrapInternal(err, "user registration transaction failed")
	}

	return user, nil
}

// ConfirmRegistration redeems a verification token: the linked account goes
// active and the token is consumed. A second call with the same value fails
// with ErrTokenNotFound.
func (m *Manager) ConfirmRegistration(ctx context.Context, tokenValue string) error {
	return m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := m.repo.Tokens().GetByValueTx(ctx, tx, tokenValue)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrTokenNotFound
			}
			return wrapInternal(err, "failed to look up verification token")
		}

		if token.User == nil {
			return goerrors.New("verification token has no linked user", goerrors.CategoryInternal)
		}

		if _, err := m.repo.Users().ActivateTx(ctx, tx, token.User); err != nil {
			return wrapInternal(err, "failed to activate user")
		}

		if _, err := m.repo.Tokens().DeleteByValueTx(ctx, tx, tokenValue); err != nil {
			return wrapInternal(err, "failed to consume verification token")
		}

		return nil
	})
}

// Refresh rotates a refresh token: the presented value is consumed and
// exactly one replacement is issued together with a new access credential.
// The delete-by-value count arbitrates concurrent redemptions of the same
// value; the loser sees ErrTokenNotFound.
func (m *Manager) Refresh(ctx context.Context, tokenValue string) (*LoginResult, error) {
	var result *LoginResult

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := m.repo.Tokens().GetByValueTx(ctx, tx, tokenValue)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrTokenNotFound
			}
			return wrapInternal(err, "failed to look up refresh token")
		}

		if token.User == nil {
			return goerrors.New("refresh token has no linked user", goerrors.CategoryInternal)
		}

		deleted, err := m.repo.Tokens().DeleteByValueTx(ctx, tx, tokenValue)
		if err != nil {
			return wrapInternal(err, "failed to consume refresh token")
		}
		if deleted == 0 {
			return ErrTokenNotFound
		}

		result, err = m.issueSessionTx(ctx, tx, token.User)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// RequestDeletion issues a deletion token for the account and returns the
// confirmation link the caller should deliver to the user.
func (m *Manager) RequestDeletion(ctx context.Context, user *User) (string, error) {
	if user == nil {
		return "", ErrUserNotFound
	}

	var link string
	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := m.repo.Tokens().IssueTx(ctx, tx, user, TokenDeletion)
		if err != nil {
			return wrapInternal(err, "failed to issue deletion token")
		}

		link = m.confirmationLink("/confirm/delete", token.Value)
		return nil
	})
	if err != nil {
		return "", err
	}

	return link, nil
}

// ConfirmDeletion redeems a deletion token: every token the account owns is
// removed, whatever its type, and the account is soft deleted. The user is
// re-read by email before the flag flips.
func (m *Manager) ConfirmDeletion(ctx context.Context, tokenValue string) error {
	return m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := m.repo.Tokens().GetByValueTx(ctx, tx, tokenValue)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrTokenNotFound
			}
			return wrapInternal(err, "failed to look up deletion token")
		}

		if token.User == nil {
			return goerrors.New("deletion token has no linked user", goerrors.CategoryInternal)
		}

		if err := m.repo.Tokens().DeleteAllByUserTx(ctx, tx, token.UserID); err != nil {
			return wrapInternal(err, "failed to drop account tokens")
		}

		user, err := m.repo.Users().GetByEmailTx(ctx, tx, token.User.Email)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrTokenNotFound
			}
			return wrapInternal(err, "failed to re-read user for deletion")
		}

		if _, err := m.repo.Users().MarkDeletedTx(ctx, tx, user); err != nil {
			return wrapInternal(err, "failed to mark user deleted")
		}

		return nil
	})
}

// DropToken unconditionally deletes a token by value. A missing token is a
// successful no-op, unlike the confirm and refresh lookups.
func (m *Manager) DropToken(ctx context.Context, tokenValue string) error {
	_, err := m.repo.Tokens().DeleteByValue(ctx, tokenValue)
	if err != nil {
		return wrapInternal(err, "failed to drop token")
	}
	return nil
}

// DropAllRefreshTokens logs the user out everywhere by removing every
// refresh token the account owns. The caller passes the authenticated
// principal explicitly; this package never reads it from ambient state.
func (m *Manager) DropAllRefreshTokens(ctx context.Context, user *User) error {
	if user == nil {
		return ErrUserNotFound
	}

	err := m.repo.Tokens().DeleteAllByUserAndType(ctx, user.ID, TokenRefresh)
	if err != nil {
		return wrapInternal(err, "failed to drop refresh tokens")
	}
	return nil
}

// AuthenticateWithGoogle runs the authorization-code flow: exchange the code
// for an id_token, verify its signature and audience, map the verified email
// onto a local account (creating an active one on first sight), and issue a
// session with the same payload shape as password login.
func (m *Manager) AuthenticateWithGoogle(ctx context.Context, code string) (*LoginResult, error) {
	if m.federator == nil {
		return nil, goerrors.New("no identity federator configured", goerrors.CategoryInternal)
	}

	rawIDToken, err := m.federator.ExchangeCode(ctx, code)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodeExchangeFailed.Category, ErrCodeExchangeFailed.Message).
			WithTextCode(ErrCodeExchangeFailed.TextCode)
	}

	identity, err := m.federator.VerifyIdentityToken(ctx, rawIDToken)
	if err != nil || identity == nil || identity.Email == "" {
		return nil, ErrInvalidIdentityToken
	}

	var result *LoginResult
	err = m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := m.repo.Users().GetByEmailTx(ctx, tx, identity.Email)
		if err != nil {
			if !goerrors.IsNotFound(err) {
				return wrapInternal(err, "failed to look up federated user")
			}

			// first federated login: the account is active immediately,
			// no email confirmation step
			user = &User{
				Email:    identity.Email,
				Username: identity.Email,
				Role:     RoleUser,
				Provider: ProviderGoogle,
				Active:   true,
			}
			if user, err = m.repo.Users().CreateTx(ctx, tx, user); err != nil {
				return wrapInternal(err, "failed to create federated user")
			}
		}

		if user.Deleted {
			return ErrUserNotFound
		}

		if user.Locked {
			return ErrAccountLocked
		}

		result, err = m.issueSessionTx(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SessionFromToken validates an access credential and returns its claims
func (m *Manager) SessionFromToken(raw string) (AuthClaims, error) {
	return m.tokenService.Validate(raw)
}

func (m *Manager) issueSessionTx(ctx context.Context, tx bun.IDB, user *User) (*LoginResult, error) {
	accessToken, err := m.tokenService.Generate(user.Email, user.Role)
	if err != nil {
		return nil, wrapInternal(err, "failed to generate access credential")
	}

	refresh, err := m.repo.Tokens().IssueTx(ctx, tx, user, TokenRefresh)
	if err != nil {
		return nil, wrapInternal(err, "failed to issue refresh token")
	}

	return newLoginResult(user, accessToken, refresh), nil
}

func (m *Manager) confirmationLink(path, tokenValue string) string {
	return fmt.Sprintf("%s%s?token=%s", m.config.GetBaseURL(), path, tokenValue)
}

func wrapInternal(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
