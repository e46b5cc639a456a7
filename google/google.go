// Package google implements the OAuth2 identity federator for Google. It
// exchanges an authorization code for an id_token at the provider's token
// endpoint and verifies the token's signature and audience against Google's
// published JWKS.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	auth "github.com/opinioncollector/go-auth"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"
)

// Config holds Google OAuth configuration. The redirect URI must match what
// was registered with the provider; a mismatch fails the code exchange
// upstream.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	TokenURL string
	JWKSURL  string

	HTTPClient *http.Client
}

// Provider implements auth.IdentityFederator for Google.
type Provider struct {
	config     Config
	httpClient *http.Client

	jwksOnce sync.Once
	jwks     *keyfunc.JWKS
	jwksErr  error
}

// New creates a new Google provider.
func New(cfg Config) *Provider {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultJWKSURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// NewFromAuthConfig builds a provider from the shared auth configuration.
func NewFromAuthConfig(cfg auth.Config) *Provider {
	return New(Config{
		ClientID:     cfg.GetGoogleClientID(),
		ClientSecret: cfg.GetGoogleClientSecret(),
		RedirectURI:  cfg.GetGoogleRedirectURI(),
	})
}

var _ auth.IdentityFederator = (*Provider)(nil)

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	IDToken     string `json:"id_token"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

// ExchangeCode trades an authorization code for the id_token embedded in the
// provider's token response.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (string, error) {
	payload, err := json.Marshal(tokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		RedirectURI:  p.config.RedirectURI,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", providerError("exchange", resp.StatusCode, "invalid_response", "failed to decode token response", err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.Error != "" {
		return "", providerError("exchange", resp.StatusCode, tokenResp.Error, tokenResp.ErrorDesc, nil)
	}

	if tokenResp.IDToken == "" {
		return "", providerError("exchange", resp.StatusCode, "missing_id_token", "token response lacks id_token", nil)
	}

	return tokenResp.IDToken, nil
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// VerifyIdentityToken checks the id_token signature against the provider
// JWKS and requires the audience to equal the configured client id.
func (p *Provider) VerifyIdentityToken(ctx context.Context, rawIDToken string) (*auth.FederatedIdentity, error) {
	jwks, err := p.keySet()
	if err != nil {
		return nil, providerError("verify", 0, "jwks_unavailable", "failed to load provider key set", err)
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(rawIDToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwks.Keyfunc(t)
	}, jwt.WithAudience(p.config.ClientID))

	if err != nil {
		return nil, providerError("verify", 0, "invalid_id_token", "id_token failed verification", err)
	}

	if !token.Valid || claims.Email == "" {
		return nil, providerError("verify", 0, "invalid_id_token", "id_token has no usable identity", nil)
	}

	return &auth.FederatedIdentity{
		Email:         claims.Email,
		Subject:       claims.RegisteredClaims.Subject,
		EmailVerified: claims.EmailVerified,
	}, nil
}

func (p *Provider) keySet() (*keyfunc.JWKS, error) {
	p.jwksOnce.Do(func() {
		p.jwks, p.jwksErr = keyfunc.Get(p.config.JWKSURL, keyfunc.Options{
			Client:          p.httpClient,
			RefreshInterval: time.Hour,
		})
	})
	return p.jwks, p.jwksErr
}

// ProviderError captures normalized provider response details.
type ProviderError struct {
	Operation   string
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "google provider error"
	}

	if e.Description != "" {
		return fmt.Sprintf("google %s failed: %s", e.Operation, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("google %s failed: %s", e.Operation, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("google %s failed: %v", e.Operation, e.Err)
	}

	return fmt.Sprintf("google %s failed", e.Operation)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func providerError(operation string, status int, code, description string, err error) *ProviderError {
	return &ProviderError{
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
	}
}
