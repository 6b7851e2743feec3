package librarian

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-librarian/mailer"
	"github.com/joho/godotenv"
)

// AppConfig is the process configuration, loaded from the environment (and
// an optional .env file). It satisfies the Config getters the auth and
// token components are constructed with.
type AppConfig struct {
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":3000"`
	DSN        string `env:"DATABASE_DSN" envDefault:"file:librarian.db?cache=shared"`
	SigningKey string `env:"JWT_SECRET"`
	Issuer     string `env:"JWT_ISSUER" envDefault:"go-librarian"`
	// TTLs in hours; the defaults mirror the 10 day / 30 day pair the API
	// has always issued.
	AccessTokenExpiration  int    `env:"JWT_ACCESS_TTL_HOURS" envDefault:"240"`
	RefreshTokenExpiration int    `env:"JWT_REFRESH_TTL_HOURS" envDefault:"720"`
	ContextKey             string `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	Debug                  bool   `env:"DEBUG" envDefault:"false"`

	Mailer mailer.Config
}

var _ Config = (*AppConfig)(nil)

// LoadConfig reads the environment into an AppConfig. A missing .env file
// is not an error; a missing signing secret is.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the settings that have no safe default
func (c *AppConfig) Validate() error {
	if c.SigningKey == "" {
		return errors.New("JWT_SECRET is required", errors.CategoryBadInput)
	}
	if c.AccessTokenExpiration <= 0 || c.RefreshTokenExpiration <= 0 {
		return errors.New("token TTLs must be positive", errors.CategoryBadInput)
	}
	return nil
}

func (c *AppConfig) GetSigningKey() string         { return c.SigningKey }
func (c *AppConfig) GetIssuer() string             { return c.Issuer }
func (c *AppConfig) GetAccessTokenExpiration() int { return c.AccessTokenExpiration }
func (c *AppConfig) GetRefreshTokenExpiration() int {
	return c.RefreshTokenExpiration
}
func (c *AppConfig) GetContextKey() string { return c.ContextKey }
