package auth

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is an environment-backed Config implementation. All values are
// supplied by the environment; nothing about the deployment is hardcoded.
type EnvConfig struct {
	SigningKey         string   `env:"AUTH_SIGNING_KEY"`
	TokenExpiration    int      `env:"AUTH_TOKEN_EXPIRATION" envDefault:"1"`
	Issuer             string   `env:"AUTH_ISSUER" envDefault:"opinioncollector"`
	Audience           []string `env:"AUTH_AUDIENCE" envSeparator:","`
	BaseURL            string   `env:"BACKEND_URL"`
	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string   `env:"GOOGLE_REDIRECT_URI"`
}

// NewEnvConfig reads the configuration from the environment
func NewEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse auth configuration")
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("AUTH_SIGNING_KEY is required", errors.CategoryBadInput)
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("BACKEND_URL is required", errors.CategoryBadInput)
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string         { return c.SigningKey }
func (c *EnvConfig) GetTokenExpiration() int       { return c.TokenExpiration }
func (c *EnvConfig) GetIssuer() string             { return c.Issuer }
func (c *EnvConfig) GetAudience() []string         { return c.Audience }
func (c *EnvConfig) GetBaseURL() string            { return c.BaseURL }
func (c *EnvConfig) GetGoogleClientID() string     { return c.GoogleClientID }
func (c *EnvConfig) GetGoogleClientSecret() string { return c.GoogleClientSecret }
func (c *EnvConfig) GetGoogleRedirectURI() string  { return c.GoogleRedirectURI }

var _ Config = (*EnvConfig)(nil)
