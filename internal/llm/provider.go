package llm

import (
	"context"
)

// ChatProvider is the boundary to a language-model service. Implementations
// wrap one provider SDK and translate its errors into coded errors.
type ChatProvider interface {
	// Name returns the provider name (e.g., "openai", "anthropic", "ollama").
	Name() string

	// Complete sends a chat completion request and blocks until the full
	// reply (with its token usage counters) is available.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
