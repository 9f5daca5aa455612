package providers

import (
	"context"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/prototypeforge/aicxo/internal/llm"
)

// OllamaProvider implements ChatProvider for locally hosted models.
type OllamaProvider struct {
	client *ollama.LLM
	config llm.ProviderConfig
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg llm.ProviderConfig) (*OllamaProvider, error) {
	opts := []ollama.Option{}

	if cfg.DefaultModel != "" {
		opts = append(opts, ollama.WithModel(cfg.DefaultModel))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}

	return &OllamaProvider{
		client: client,
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Complete sends a chat completion request. Local models report no usable
// token counts through langchaingo, so usage may come back zero.
func (p *OllamaProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, llm.NewInvalidRequestError(err)
	}

	messages := llm.ToLangchainMessages(req.Messages)
	callOpts := llm.BuildCallOptions(req)

	resp, err := p.client.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}

	out := llm.FromLangchainResponse(resp, req.Model)
	if out.Content == "" && out.FinishReason != llm.FinishReasonLength {
		return nil, llm.NewEmptyReplyError("ollama")
	}

	return out, nil
}
