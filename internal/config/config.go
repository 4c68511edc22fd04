// Package config loads application configuration from the environment.
//
// CONFIGURATION SOURCES:
// viper reads an optional .env file in the working directory, then lets
// real environment variables override it (AutomaticEnv). This gives the
// usual 12-factor behaviour: .env for local dev, plain env vars in
// production.
//
// Everything external the app talks to is configured here: the Slack OAuth
// app, the session signing secret, the sqlite database path, the upload
// directory, and the (optional) Hack Club directory API.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
type Config struct {
	Port      int    `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"` // "development" or "production"
	DBPath    string `mapstructure:"DB_PATH"`
	UploadDir string `mapstructure:"UPLOAD_DIR"`

	// SessionSecret signs the JWT session cookie. Generate with:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	SlackClientID     string `mapstructure:"SLACK_CLIENT_ID"`
	SlackClientSecret string `mapstructure:"SLACK_CLIENT_SECRET"`
	SlackCallbackURL  string `mapstructure:"SLACK_CALLBACK_URL"`

	// AdminSlackIDs is a comma-separated list of Slack user IDs that get
	// the admin role on login.
	AdminSlackIDs string `mapstructure:"ADMIN_SLACK_IDS"`

	// Hack Club directory API, used to prefill club details from a join
	// code. Optional — lookup endpoints return 404 when unset.
	HackClubAPIURL string `mapstructure:"HACKCLUB_API_URL"`
	HackClubAPIKey string `mapstructure:"HACKCLUB_API_KEY"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// AutomaticEnv alone doesn't make a key visible to Unmarshal — viper
	// only consults the environment for keys it already knows about. Bind
	// every key explicitly so env-var-only deployments (no .env file) work.
	for _, key := range []string{
		"PORT", "ENV", "DB_PATH", "UPLOAD_DIR",
		"SESSION_SECRET",
		"SLACK_CLIENT_ID", "SLACK_CLIENT_SECRET", "SLACK_CALLBACK_URL",
		"ADMIN_SLACK_IDS",
		"HACKCLUB_API_URL", "HACKCLUB_API_KEY",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", key, err)
		}
	}

	// Defaults for everything that has a sensible one. Secrets never get
	// defaults — a missing secret must fail loudly, not silently sign
	// tokens with "".
	v.SetDefault("PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_PATH", "data/passport.db")
	v.SetDefault("UPLOAD_DIR", "data/uploads")
	v.SetDefault("HACKCLUB_API_URL", "https://directory.hackclub.com/api")

	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is fine; any other read error is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if cfg.SlackCallbackURL == "" {
		cfg.SlackCallbackURL = fmt.Sprintf("http://localhost:%d/auth/slack/callback", cfg.Port)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	return nil
}

// Production reports whether the app runs with production hardening
// (Secure cookies, Info-level logging).
func (c *Config) Production() bool {
	return c.Env == "production"
}

// AdminIDs returns the parsed ADMIN_SLACK_IDS list.
func (c *Config) AdminIDs() []string {
	if strings.TrimSpace(c.AdminSlackIDs) == "" {
		return nil
	}
	parts := strings.Split(c.AdminSlackIDs, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
