package providers

import (
	"fmt"

	"github.com/prototypeforge/aicxo/internal/llm"
	"github.com/prototypeforge/aicxo/internal/types"
)

// NewProvider creates a ChatProvider from a provider configuration.
func NewProvider(cfg llm.ProviderConfig) (llm.ChatProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case llm.ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case llm.ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	case llm.ProviderOllama:
		return NewOllamaProvider(cfg)
	default:
		return nil, types.NewError(
			llm.ErrProviderNotFound,
			fmt.Sprintf("unknown provider type %q", cfg.Type),
		)
	}
}
