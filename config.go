package authkit

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded from the environment. Every
// required variable missing at startup is fatal; the process must not serve
// traffic half-configured.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	// SessionSecret signs the auth-token cookie
	SessionSecret string `env:"SESSION_SECRET,required"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	// BaseURL is the public origin; the OAuth callback URL is derived from
	// it and must match the provider's registration exactly.
	BaseURL string `env:"OAUTH2_BASE_URL,required"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`

	SupabaseURL     string `env:"SUPABASE_URL,required"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY,required"`

	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"12"`
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, NewConfigurationError("parse env: %s", err)
	}
	return &cfg, nil
}

// GoogleCallbackURL is the redirect URI registered with Google.
func (c *Config) GoogleCallbackURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/api/auth/google/callback"
}
