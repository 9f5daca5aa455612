package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/prototypeforge/aicxo/internal/llm"
)

// MockCall records one request made against the mock provider.
type MockCall struct {
	Request llm.CompletionRequest
}

// MockProvider implements ChatProvider for testing. Responses are served
// in order, cycling; per-model responses take priority, which lets a test
// give each board member's model a distinct scripted reply.
type MockProvider struct {
	mu             sync.Mutex
	responses      []string
	responseIndex  int
	modelResponses map[string]string
	errs           map[string]error
	calls          []MockCall
	usage          llm.TokenUsage
}

// NewMockProvider creates a mock provider serving the given responses in
// order.
func NewMockProvider(responses []string) *MockProvider {
	return &MockProvider{
		responses:      responses,
		modelResponses: make(map[string]string),
		errs:           make(map[string]error),
		usage:          llm.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}
}

// WithModelResponse scripts a fixed response for one model identifier.
func (p *MockProvider) WithModelResponse(model, response string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelResponses[model] = response
	return p
}

// WithModelError scripts a failure for one model identifier.
func (p *MockProvider) WithModelError(model string, err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[model] = err
	return p
}

// WithUsage overrides the token usage reported on every completion.
func (p *MockProvider) WithUsage(usage llm.TokenUsage) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage = usage
	return p
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Complete serves the next scripted response.
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, llm.TranslateError("mock", err)
	}

	p.mu.Lock()
	p.calls = append(p.calls, MockCall{Request: req})

	if err, ok := p.errs[req.Model]; ok {
		p.mu.Unlock()
		return nil, err
	}

	response, ok := p.modelResponses[req.Model]
	if !ok {
		if len(p.responses) == 0 {
			p.mu.Unlock()
			return nil, llm.NewProviderUnavailableError("mock", fmt.Errorf("no responses configured"))
		}
		response = p.responses[p.responseIndex%len(p.responses)]
		p.responseIndex++
	}
	usage := p.usage
	p.mu.Unlock()

	return &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        req.Model,
		Content:      response,
		FinishReason: llm.FinishReasonStop,
		Usage:        usage,
	}, nil
}

// Calls returns a copy of all recorded calls.
func (p *MockProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]MockCall, len(p.calls))
	copy(calls, p.calls)
	return calls
}

// CallCount returns the number of completions requested.
func (p *MockProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
