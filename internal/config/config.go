// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/hoopstate/internal/domain/teams"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory game job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of game workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the set of recently submitted game ids.
	DedupeSize int `koanf:"dedupe_size"`

	// MinimumPossessionsForLineupRanking flags smaller samples as low confidence.
	MinimumPossessionsForLineupRanking int `koanf:"minimum_possessions_for_lineup_ranking"`

	// ParseFailureThresholdPct marks a game complete_with_errors when the
	// unparsed or lineup inconsistency share exceeds it.
	ParseFailureThresholdPct float64 `koanf:"parse_failure_threshold_pct"`

	// TeamNameExclusionList holds names that are never accepted as players.
	TeamNameExclusionList []string `koanf:"team_name_exclusion_list"`

	// PeriodLengthMinutes and OvertimeLengthMinutes size the game clock.
	PeriodLengthMinutes   int `koanf:"period_length_minutes"`
	OvertimeLengthMinutes int `koanf:"overtime_length_minutes"`

	// UnparsedSampleSize caps the raw texts kept in diagnostics.
	UnparsedSampleSize int `koanf:"unparsed_sample_size"`

	// SubmitRatePerSecond and SubmitBurst throttle POST /games.
	SubmitRatePerSecond float64 `koanf:"submit_rate_per_second"`
	SubmitBurst         int     `koanf:"submit_burst"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// ArchiveDriver selects the SQL archive: "", sqlite or postgres.
	ArchiveDriver string `koanf:"archive_driver"`
	ArchiveDSN    string `koanf:"archive_dsn"`

	// RedisURL enables the Redis publisher when set.
	RedisURL string `koanf:"redis_url"`

	// CORSAllowedOrigins lists origins allowed by the HTTP API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                           "info",
		LogFormat:                          "text",
		Addr:                               ":9080",
		QueueSize:                          10_000,
		WorkerCount:                        runtime.NumCPU(),
		DedupeSize:                         100_000,
		MinimumPossessionsForLineupRanking: 10,
		ParseFailureThresholdPct:           15.0,
		TeamNameExclusionList:              teams.DefaultExclusions(),
		PeriodLengthMinutes:                12,
		OvertimeLengthMinutes:              5,
		UnparsedSampleSize:                 20,
		SubmitRatePerSecond:                50,
		SubmitBurst:                        100,
		MaxBodyBytes:                       8 << 20,
		CORSAllowedOrigins:                 []string{"*"},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ParseFailureThresholdPct < 0 || c.ParseFailureThresholdPct > 100:
		return fmt.Errorf("%w: parse_failure_threshold_pct must be within 0..100, got %v", ErrInvalidConfig, c.ParseFailureThresholdPct)
	case c.MinimumPossessionsForLineupRanking < 0:
		return fmt.Errorf("%w: minimum_possessions_for_lineup_ranking must not be negative", ErrInvalidConfig)
	case c.PeriodLengthMinutes <= 0 || c.OvertimeLengthMinutes <= 0:
		return fmt.Errorf("%w: period lengths must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.ArchiveDriver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnsupportedArchive, c.ArchiveDriver)
	}
	if c.ArchiveDriver == "postgres" && c.ArchiveDSN == "" {
		return fmt.Errorf("%w: archive_dsn is required for postgres", ErrInvalidConfig)
	}
	return nil
}
