package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeAccountLocked      = "account_locked"
	TextCodeAccountDisabled    = "account_disabled"
	TextCodeAccountDeleted     = "account_deleted"
	TextCodeTokenNotFound      = "token_not_found"
	TextCodeEmailRegistered    = "email_already_registered"
	TextCodeInvalidIDToken     = "invalid_identity_token"
	TextCodeUserNotFound       = "user_not_found"
	TextCodeCodeExchangeFail   = "code_exchange_failed"
)

// ErrInvalidCredentials is returned when the email/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountLocked is returned when authentication hits a locked account.
var ErrAccountLocked = errors.New("account is locked", errors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(http.StatusLocked)

// ErrAccountDisabled is returned when the account has not been activated yet.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(http.StatusNotAcceptable)

// ErrAccountDeleted is returned when credentials match a soft deleted account.
// Deleted accounts are terminal; they authenticate as if unauthorized.
var ErrAccountDeleted = errors.New("account no longer exists", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDeleted).
	WithCode(errors.CodeUnauthorized)

// ErrTokenNotFound is returned when a confirm or refresh operation presents a
// token value with no matching row. A consumed token is indistinguishable from
// one that never existed.
var ErrTokenNotFound = errors.New("token not found", errors.CategoryBadInput).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(errors.CodeBadRequest)

// ErrEmailAlreadyRegistered is returned when user creation fails during
// registration. The mapping is intentionally coarse: any persistence failure
// surfaces as this error, so callers must not assume duplicate email is the
// only underlying cause.
var ErrEmailAlreadyRegistered = errors.New("email already registered", errors.CategoryValidation).
	WithTextCode(TextCodeEmailRegistered).
	WithCode(errors.CodeConflict)

// ErrInvalidIdentityToken is returned when a federated id_token fails
// signature or audience verification.
var ErrInvalidIdentityToken = errors.New("invalid identity token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidIDToken).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound is returned when federated login resolves to a soft deleted
// account.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrCodeExchangeFailed is returned when the provider token endpoint call
// fails or the response lacks an id_token.
var ErrCodeExchangeFailed = errors.New("authorization code exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeCodeExchangeFail).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty inputs to the password hasher
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for expired access credentials
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("token_expired").
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT claims
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)
