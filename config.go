package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/turbekoff/staminabot/pkg/env"
)

type Config struct {
	BotToken        string        `yaml:"bot_token" env:"STAMINA_TELEGRAM_TOKEN"`
	BotOffset       int           `yaml:"bot_offset" env:"STAMINA_TELEGRAM_OFFSET"`
	BotTimeout      int           `yaml:"bot_timeout" env:"STAMINA_TELEGRAM_TIMEOUT" env-default:"60"`
	SessionTTL      time.Duration `yaml:"session_ttl" env:"STAMINA_SESSION_TTL" env-default:"20m"`
	SessionCleanup  time.Duration `yaml:"session_cleanup" env:"STAMINA_SESSION_CLEANUP" env-default:"1m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"STAMINA_SHUTDOWN_TIMEOUT" env-default:"2m"`
	Storage         StorageConfig `yaml:"storage"`
	Log             LogConfig     `yaml:"log"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" env:"STAMINA_STORAGE" env-default:"file"`
	Dir     string `yaml:"dir" env:"STAMINA_DATA_DIR" env-default:"./data"`
	DSN     string `yaml:"dsn" env:"STAMINA_DSN"`
}

type LogConfig struct {
	Level zapcore.Level `yaml:"level" env:"STAMINA_LOG_LEVEL" env-default:"info"`
	File  string        `yaml:"file" env:"STAMINA_LOG_FILE"`
}

// LoadConfig reads the optional YAML file at path, then .env, then the
// environment. Later sources override earlier ones.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Load(".env"); err != nil {
		return nil, err
	}
	if err := env.Read(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.Level)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
