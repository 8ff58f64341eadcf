package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type nested struct {
	Dir string `env:"TEST_DIR" env-default:"./data"`
}

type testConfig struct {
	Token   string        `env:"TEST_TOKEN,required"`
	Port    int           `env:"TEST_PORT" env-default:"8080"`
	TTL     time.Duration `env:"TEST_TTL" env-default:"20m"`
	Ratio   float64       `env:"TEST_RATIO"`
	Debug   bool          `env:"TEST_DEBUG" env-default:"false"`
	Level   zapcore.Level `env:"TEST_LEVEL" env-default:"info"`
	Tags    []string      `env:"TEST_TAGS"`
	Storage nested
	ignored string
}

func lookupFrom(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestReadWithDefaults(t *testing.T) {
	var cfg testConfig
	err := ReadWith(&cfg, lookupFrom(map[string]string{"TEST_TOKEN": "secret"}))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 20*time.Minute, cfg.TTL)
	assert.Equal(t, zapcore.InfoLevel, cfg.Level)
	assert.Equal(t, "./data", cfg.Storage.Dir)
	assert.Nil(t, cfg.Tags)
}

func TestReadWithOverrides(t *testing.T) {
	var cfg testConfig
	err := ReadWith(&cfg, lookupFrom(map[string]string{
		"TEST_TOKEN": "secret",
		"TEST_PORT":  "0x10",
		"TEST_TTL":   "90s",
		"TEST_RATIO": "0.25",
		"TEST_DEBUG": "true",
		"TEST_LEVEL": "debug",
		"TEST_TAGS":  "a, b,,c",
		"TEST_DIR":   "/var/lib/stamina",
	}))
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.TTL)
	assert.Equal(t, 0.25, cfg.Ratio)
	assert.True(t, cfg.Debug)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
	assert.Equal(t, "/var/lib/stamina", cfg.Storage.Dir)
}

func TestReadWithKeepsPrefilledValues(t *testing.T) {
	cfg := testConfig{Token: "from-file", Port: 9000}
	err := ReadWith(&cfg, lookupFrom(map[string]string{"TEST_PORT": "9100"}))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Token, "required is satisfied by a prefilled value")
	assert.Equal(t, 9100, cfg.Port, "environment wins over prefilled value")
	assert.Equal(t, 20*time.Minute, cfg.TTL)
}

func TestReadWithRequired(t *testing.T) {
	var cfg testConfig
	err := ReadWith(&cfg, lookupFrom(nil))
	assert.ErrorContains(t, err, "TEST_TOKEN is required")
}

func TestReadWithInvalidValue(t *testing.T) {
	var cfg testConfig
	err := ReadWith(&cfg, lookupFrom(map[string]string{
		"TEST_TOKEN": "secret",
		"TEST_TTL":   "soon",
	}))
	assert.ErrorContains(t, err, "TEST_TTL")
}

func TestReadRejectsNonStruct(t *testing.T) {
	n := 1
	assert.Error(t, ReadWith(&n, lookupFrom(nil)))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("STAMINA_ENV_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Setenv("STAMINA_ENV_TEST_VALUE", "")
	os.Unsetenv("STAMINA_ENV_TEST_VALUE")

	require.NoError(t, Load(filepath.Join(dir, "missing.env"), file))
	assert.Equal(t, "from-dotenv", os.Getenv("STAMINA_ENV_TEST_VALUE"))
}
