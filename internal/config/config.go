package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                 string `mapstructure:"PORT"`
	Env                  string `mapstructure:"ENV"`
	BackendURL           string `mapstructure:"BACKEND_URL"`
	BackendTimeoutSecs   int    `mapstructure:"BACKEND_TIMEOUT_SECONDS"`
	SessionSecret        string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours      int    `mapstructure:"SESSION_TTL_HOURS"`
	FallbackDoctorID     string `mapstructure:"FALLBACK_DOCTOR_ID"`
	OpLookupDebounceMS   int    `mapstructure:"OP_LOOKUP_DEBOUNCE_MS"`
	TLSEnabled           bool   `mapstructure:"TLS_ENABLED"`
	TLSCertFile          string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile           string `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 30)
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("FALLBACK_DOCTOR_ID", "dr_prakashini")
	v.SetDefault("OP_LOOKUP_DEBOUNCE_MS", 800)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("BACKEND_URL")
	v.BindEnv("BACKEND_TIMEOUT_SECONDS")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("SESSION_TTL_HOURS")
	v.BindEnv("FALLBACK_DOCTOR_ID")
	v.BindEnv("OP_LOOKUP_DEBOUNCE_MS")
	v.BindEnv("TLS_ENABLED")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// BackendTimeout returns the outbound HTTP timeout for backend calls.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSecs) * time.Second
}

// SessionTTL returns the lifetime of the signed session cookie. It mirrors
// the backend token's own 24h expiry so the cookie does not outlive the
// credential it carries.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// OpLookupDebounce returns the quiet period for the OP No reconciliation
// lookup.
func (c *Config) OpLookupDebounce() time.Duration {
	return time.Duration(c.OpLookupDebounceMS) * time.Millisecond
}

// Validate checks that the configuration is safe to run. In production a
// SESSION_SECRET must be set so session cookies stay valid across restarts
// and instances; in development a random per-process secret is generated
// when none is configured.
func (c *Config) Validate() error {
	if c.IsProduction() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(c.SessionSecret))
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
