package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Config is the dayboard runtime configuration. Nothing reads the
// environment after Load returns.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	// Credential storage
	DatabaseDriver    string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // "sqlite" or "postgres"
	DatabaseURL       string `env:"DATABASE_URL" envDefault:"./data/dayboard.db"`
	CredentialBackend string `env:"CREDENTIAL_BACKEND" envDefault:"sql"` // "sql" or "keyring"
	KeyringDir        string `env:"KEYRING_DIR,expand" envDefault:"${HOME}/.config/dayboard/keyring"`
	KeyringPassword   string `env:"KEYRING_PASSWORD"`

	// Google
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET,required"`
	GoogleTokenURL     string        `env:"GOOGLE_TOKEN_URL"`
	GmailEndpoint      string        `env:"GMAIL_ENDPOINT"`
	CalendarEndpoint   string        `env:"CALENDAR_ENDPOINT"`
	ProviderTimeout    time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`
	BreakerTimeout     time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`

	// Sessions
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	switch c.CredentialBackend {
	case "sql", "keyring":
	default:
		return fmt.Errorf("CREDENTIAL_BACKEND must be sql or keyring, got %q", c.CredentialBackend)
	}
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 bytes, got %d", len(c.SessionSecret))
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

// OAuth2 returns the client registration used for both the initial grant and
// refreshes. Client credentials are sent as form parameters.
func (c *Config) OAuth2(scopes ...string) *oauth2.Config {
	endpoint := google.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	if c.GoogleTokenURL != "" {
		endpoint.TokenURL = c.GoogleTokenURL
	}
	return &oauth2.Config{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
}
