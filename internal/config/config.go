// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Layer file and environment overrides on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

import "github.com/okian/pitchledger/internal/domain/rating"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseDSN points the SQLite driver at its file, or ":memory:".
	DatabaseDSN string `koanf:"database_dsn"`

	// KFactor scales rating movement per match.
	KFactor float64 `koanf:"k_factor"`

	// MaxBatchRows caps the number of rows per ingestion request.
	MaxBatchRows int `koanf:"max_batch_rows"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ShutdownGraceSeconds bounds how long in-flight requests may drain.
	ShutdownGraceSeconds int `koanf:"shutdown_grace_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DatabaseDSN:          "pitchledger.db",
		KFactor:              rating.DefaultK,
		MaxBatchRows:         10_000,
		MaxLeaderboardLimit:  100,
		ShutdownGraceSeconds: 10,
	}
}
