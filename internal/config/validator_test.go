package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prototypeforge/aicxo/internal/types"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	openai := cfg.Providers["openai"]
	openai.APIKey = "sk-test"
	cfg.Providers["openai"] = openai
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	require.NoError(t, NewValidator().Validate(validConfig()))
}

func TestValidate_NilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}

func TestValidate_TemperatureOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Board.Temperature = 3.0

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
	assert.Contains(t, err.Error(), "board.temperature")
}

func TestValidate_MissingDatabasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Path = ""

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.path is required")
}

func TestValidate_NoProviders(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = nil

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}

func TestValidate_BadLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("BOARDROOM_HOME", "/tmp/boardhome")
	cfg := DefaultConfig()

	assert.Equal(t, "/tmp/boardhome/boardroom.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.Board.DefaultProvider)
	assert.Equal(t, "gpt-4o", cfg.Board.ChairModel)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Tracing.Enabled)
}
