package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SLAGUARD_DB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".slaguard", "slaguard.db"), cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 2, cfg.RepeatOffenderThreshold)
	assert.Equal(t, 8, cfg.EvalWorkers)
	assert.Equal(t, 1, cfg.NotifyRetries)
	assert.Equal(t, 20.0, cfg.NotifyRate)
	assert.Equal(t, 2*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "sla_notifications", cfg.NotifyStream)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.OTel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SLAGUARD_DB", "/tmp/sla.db")
	t.Setenv("SLAGUARD_SWEEP_INTERVAL", "90s")
	t.Setenv("SLAGUARD_REPEAT_OFFENDER_THRESHOLD", "4")
	t.Setenv("SLAGUARD_EVAL_WORKERS", "2")
	t.Setenv("SLAGUARD_NOTIFY_RETRIES", "0")
	t.Setenv("SLAGUARD_NOTIFY_RATE", "2.5")
	t.Setenv("SLAGUARD_NOTIFY_TIMEOUT", "500ms")
	t.Setenv("SLAGUARD_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("SLAGUARD_NOTIFY_STREAM", "alerts")
	t.Setenv("SLAGUARD_RULES_FILE", "rules.yaml")
	t.Setenv("SLAGUARD_LOG_LEVEL", "DEBUG")
	t.Setenv("SLAGUARD_OTEL", "true")
	t.Setenv("SLAGUARD_SUPERVISOR_ID", "sup-1")
	t.Setenv("SLAGUARD_MANAGER_ID", "mgr-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sla.db", cfg.DBPath)
	assert.Equal(t, 90*time.Second, cfg.SweepInterval)
	assert.Equal(t, 4, cfg.RepeatOffenderThreshold)
	assert.Equal(t, 2, cfg.EvalWorkers)
	assert.Equal(t, 0, cfg.NotifyRetries)
	assert.Equal(t, 2.5, cfg.NotifyRate)
	assert.Equal(t, 500*time.Millisecond, cfg.NotifyTimeout)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, "alerts", cfg.NotifyStream)
	assert.Equal(t, "rules.yaml", cfg.RulesFile)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.OTel)
	assert.Equal(t, "sup-1", cfg.SupervisorID)
	assert.Equal(t, "mgr-1", cfg.ManagerID)
}

func TestLoad_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("SLAGUARD_DB", "/tmp/sla.db")
	t.Setenv("SLAGUARD_SWEEP_INTERVAL", "soon")
	t.Setenv("SLAGUARD_REPEAT_OFFENDER_THRESHOLD", "-3")
	t.Setenv("SLAGUARD_EVAL_WORKERS", "0")
	t.Setenv("SLAGUARD_NOTIFY_RATE", "fast")
	t.Setenv("SLAGUARD_LOG_LEVEL", "loud")

	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.SweepInterval, cfg.SweepInterval)
	assert.Equal(t, def.RepeatOffenderThreshold, cfg.RepeatOffenderThreshold)
	assert.Equal(t, def.EvalWorkers, cfg.EvalWorkers)
	assert.Equal(t, def.NotifyRate, cfg.NotifyRate)
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
}
