package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stamina.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bot_timeout: 30
session_ttl: 1h
storage:
  backend: sqlite
  dir: /var/lib/stamina
log:
  level: debug
`), 0o644))

	t.Setenv("STAMINA_SESSION_TTL", "5m")
	t.Setenv("STAMINA_DSN", "file:test.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.BotTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.SessionCleanup)
	assert.Equal(t, 2*time.Minute, cfg.ShutdownTimeout)
	assert.Equal(t, StorageConfig{Backend: "sqlite", Dir: "/var/lib/stamina", DSN: "file:test.db"}, cfg.Storage)
	assert.Equal(t, zapcore.DebugLevel, cfg.Log.Level)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.BotTimeout)
	assert.Equal(t, 20*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "./data", cfg.Storage.Dir)
	assert.Equal(t, zapcore.InfoLevel, cfg.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "stamina.log")

	logger, err := newLogger(LogConfig{Level: zapcore.WarnLevel, File: file}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger.Warn("written")
	_ = logger.Sync()
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")

	logger, err = newLogger(LogConfig{Level: zapcore.WarnLevel, File: file}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
