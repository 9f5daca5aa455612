package config

import (
	"github.com/prototypeforge/aicxo/internal/llm"
)

// Config is the top-level application configuration.
type Config struct {
	Core      CoreConfig                    `mapstructure:"core" yaml:"core"`
	Database  DatabaseConfig                `mapstructure:"database" yaml:"database" validate:"required"`
	Providers map[string]llm.ProviderConfig `mapstructure:"providers" yaml:"providers" validate:"required,min=1,dive"`
	Board     BoardConfig                   `mapstructure:"board" yaml:"board" validate:"required"`
	Logging   LoggingConfig                 `mapstructure:"logging" yaml:"logging"`
	Tracing   TracingConfig                 `mapstructure:"tracing" yaml:"tracing"`
}

// CoreConfig contains application-wide settings.
type CoreConfig struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
}

// DatabaseConfig contains SQLite connection settings.
type DatabaseConfig struct {
	Path          string `mapstructure:"path" yaml:"path" validate:"required"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms" validate:"min=0"`
	MaxOpenConns  int    `mapstructure:"max_open_conns" yaml:"max_open_conns" validate:"min=1"`
	MaxIdleConns  int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns" validate:"min=0"`
}

// BoardConfig controls how deliberations run.
type BoardConfig struct {
	// DefaultProvider names the entry in Providers used when an agent's
	// model does not imply one.
	DefaultProvider string `mapstructure:"default_provider" yaml:"default_provider" validate:"required"`

	// DefaultModel is used for agents created without an explicit model.
	DefaultModel string `mapstructure:"default_model" yaml:"default_model" validate:"required"`

	// ChairModel is the fallback model for synthesis when no chair agent
	// is configured.
	ChairModel string `mapstructure:"chair_model" yaml:"chair_model" validate:"required"`

	// Temperature applies to opinion generation calls.
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`

	// MaxTokens caps each completion. Zero leaves the provider default.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens" validate:"min=0"`

	// OpinionTimeoutSeconds bounds each individual LLM call.
	OpinionTimeoutSeconds int `mapstructure:"opinion_timeout_seconds" yaml:"opinion_timeout_seconds" validate:"min=1"`
}

// LoggingConfig controls structured logging output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// TracingConfig controls OpenTelemetry trace export.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"min=0,max=1"`
}
