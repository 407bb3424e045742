// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and EKIDEN_ environment variables over New().
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text, json or tint output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// JWTSecret signs session tokens. It has no default.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTLMinutes is the lifetime of a session token.
	TokenTTLMinutes int `koanf:"token_ttl_minutes"`

	// InviteCode gates registration. Empty leaves registration open.
	InviteCode string `koanf:"invite_code"`

	// DefaultLeaderboardLimit applies when a list request names no limit.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`

	// MaxLeaderboardLimit caps the limit query parameter.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DedupeSize sets the size of the idempotency key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxImportBytes caps the body of a bulk import.
	MaxImportBytes int64 `koanf:"max_import_bytes"`

	// LatestWindowDays is how far back the latest results page reaches.
	LatestWindowDays int `koanf:"latest_window_days"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DBPath:                  "ekiden.db",
		TokenTTLMinutes:         7 * 24 * 60,
		DefaultLeaderboardLimit: 100,
		MaxLeaderboardLimit:     1000,
		DedupeSize:              50_000,
		MaxImportBytes:          1 << 20,
		LatestWindowDays:        30,
	}
}

// TokenTTL returns TokenTTLMinutes as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// LatestWindow returns LatestWindowDays as a duration.
func (c *Config) LatestWindow() time.Duration {
	return time.Duration(c.LatestWindowDays) * 24 * time.Hour
}

// Validate reports the first setting the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret must be set", ErrInvalidConfig)
	case c.TokenTTLMinutes <= 0:
		return fmt.Errorf("%w: token_ttl_minutes must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.DefaultLeaderboardLimit <= 0 || c.DefaultLeaderboardLimit > c.MaxLeaderboardLimit:
		return fmt.Errorf("%w: default_leaderboard_limit must be in 1..max_leaderboard_limit", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.MaxImportBytes <= 0:
		return fmt.Errorf("%w: max_import_bytes must be positive", ErrInvalidConfig)
	case c.LatestWindowDays <= 0:
		return fmt.Errorf("%w: latest_window_days must be positive", ErrInvalidConfig)
	}
	return nil
}
