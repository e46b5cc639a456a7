package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetBaseURL() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURI() string
}

// TokenService issues and validates signed access credentials
type TokenService interface {
	Generate(email string, role UserRole) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// CredentialVerifier checks an email/password pair against the store
type CredentialVerifier interface {
	VerifyIdentity(ctx context.Context, email, password string) (*User, error)
}

// Mailer delivers lifecycle notifications. Implementations live outside this
// package; the default logs the link instead of sending anything.
type Mailer interface {
	SendRegistrationEmail(ctx context.Context, toEmail, displayName, confirmationLink string) error
}

// IdentityFederator exchanges an authorization code for a verified federated
// identity. The google subpackage provides the production implementation.
type IdentityFederator interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	VerifyIdentityToken(ctx context.Context, rawIDToken string) (*FederatedIdentity, error)
}

// FederatedIdentity is the subset of verified id_token claims we consume
type FederatedIdentity struct {
	Email         string
	Subject       string
	EmailVerified bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
