// Package config reads slaguard settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds process-wide settings. Zero values are never used directly;
// Load always starts from Default.
type Config struct {
	DBPath                  string
	SweepInterval           time.Duration
	RepeatOffenderThreshold int
	EvalWorkers             int

	NotifyRetries int
	NotifyRate    float64
	NotifyTimeout time.Duration
	RedisURL      string
	NotifyStream  string

	RulesFile string
	LogLevel  slog.Level
	OTel      bool

	SupervisorID string
	ManagerID    string
}

// Default returns the configuration used when no variable is set. DBPath is
// left empty; Load fills it from the home directory.
func Default() Config {
	return Config{
		SweepInterval:           5 * time.Minute,
		RepeatOffenderThreshold: 2,
		EvalWorkers:             8,
		NotifyRetries:           1,
		NotifyRate:              20,
		NotifyTimeout:           2 * time.Second,
		NotifyStream:            "sla_notifications",
		LogLevel:                slog.LevelInfo,
	}
}

// Load reads SLAGUARD_* variables, falling back to defaults for unset or
// malformed values.
func Load() (Config, error) {
	cfg := Default()

	cfg.DBPath = os.Getenv("SLAGUARD_DB")
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".slaguard", "slaguard.db")
	}

	if v := os.Getenv("SLAGUARD_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	if v := os.Getenv("SLAGUARD_REPEAT_OFFENDER_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RepeatOffenderThreshold = n
		}
	}
	if v := os.Getenv("SLAGUARD_EVAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EvalWorkers = n
		}
	}
	if v := os.Getenv("SLAGUARD_NOTIFY_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.NotifyRetries = n
		}
	}
	if v := os.Getenv("SLAGUARD_NOTIFY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.NotifyRate = f
		}
	}
	if v := os.Getenv("SLAGUARD_NOTIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.NotifyTimeout = d
		}
	}
	if v := os.Getenv("SLAGUARD_NOTIFY_STREAM"); v != "" {
		cfg.NotifyStream = v
	}
	if v := os.Getenv("SLAGUARD_OTEL"); v != "" {
		cfg.OTel, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SLAGUARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLevel(v, cfg.LogLevel)
	}

	cfg.RedisURL = os.Getenv("SLAGUARD_REDIS_URL")
	cfg.RulesFile = os.Getenv("SLAGUARD_RULES_FILE")
	cfg.SupervisorID = os.Getenv("SLAGUARD_SUPERVISOR_ID")
	cfg.ManagerID = os.Getenv("SLAGUARD_MANAGER_ID")

	return cfg, nil
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
