package config

import (
	"os"
	"path/filepath"

	"github.com/prototypeforge/aicxo/internal/llm"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	homeDir := getDefaultHomeDir()

	return &Config{
		Core: CoreConfig{
			DataDir: filepath.Join(homeDir, "data"),
		},
		Database: DatabaseConfig{
			Path:          filepath.Join(homeDir, "boardroom.db"),
			BusyTimeoutMS: 5000,
			MaxOpenConns:  10,
			MaxIdleConns:  5,
		},
		Providers: map[string]llm.ProviderConfig{
			"openai": {
				Type:         llm.ProviderOpenAI,
				APIKey:       "${OPENAI_API_KEY}",
				DefaultModel: "gpt-4o-mini",
			},
		},
		Board: BoardConfig{
			DefaultProvider:       "openai",
			DefaultModel:          "gpt-4o-mini",
			ChairModel:            "gpt-4o",
			Temperature:           0.7,
			MaxTokens:             0,
			OpinionTimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "boardroom",
			SampleRate:  1.0,
		},
	}
}

// getDefaultHomeDir returns the default application home directory.
func getDefaultHomeDir() string {
	if dir := os.Getenv("BOARDROOM_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boardroom"
	}
	return filepath.Join(home, ".boardroom")
}
