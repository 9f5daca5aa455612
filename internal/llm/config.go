package llm

import (
	"fmt"
	"strings"

	"github.com/prototypeforge/aicxo/internal/types"
)

// ProviderType identifies the kind of model provider backing the board.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
)

// ProviderConfig contains the configuration for one model provider:
// credentials, endpoint override, and the model used when an agent does
// not name one.
type ProviderConfig struct {
	Type         ProviderType `mapstructure:"type" yaml:"type" validate:"required,oneof=openai anthropic ollama"`
	APIKey       string       `mapstructure:"api_key" yaml:"api_key"`
	BaseURL      string       `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel string       `mapstructure:"default_model" yaml:"default_model" validate:"required"`
}

// Validate checks the provider configuration. Ollama runs locally and
// needs no credential; the hosted providers require one.
func (p *ProviderConfig) Validate() error {
	switch p.Type {
	case ProviderOpenAI, ProviderAnthropic:
		if p.APIKey == "" {
			return types.NewError(
				types.CONFIG_PROVIDER_MISSING,
				fmt.Sprintf("provider %q requires an api_key", p.Type),
			)
		}
	case ProviderOllama:
	default:
		return types.NewError(
			types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("invalid provider type %q, must be one of: openai, anthropic, ollama", p.Type),
		)
	}

	if p.DefaultModel == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "default_model cannot be empty")
	}

	return nil
}

// NormalizeModelName normalizes model identifiers for table lookups.
func NormalizeModelName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
