package providers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/prototypeforge/aicxo/internal/llm"
	"github.com/prototypeforge/aicxo/internal/types"
)

// Resolver maps model names to chat providers. Providers are constructed
// lazily on first use and cached, so configuring a provider without
// credentials only fails when a meeting actually routes a model to it.
type Resolver struct {
	mu          sync.Mutex
	configs     map[string]llm.ProviderConfig
	clients     map[string]llm.ChatProvider
	defaultName string
}

// NewResolver creates a resolver over the configured providers.
// defaultName is used for models no prefix rule claims.
func NewResolver(configs map[string]llm.ProviderConfig, defaultName string) (*Resolver, error) {
	if _, ok := configs[defaultName]; !ok {
		return nil, types.NewError(types.CONFIG_PROVIDER_MISSING,
			fmt.Sprintf("default provider %q is not configured", defaultName))
	}
	return &Resolver{
		configs:     configs,
		clients:     make(map[string]llm.ChatProvider),
		defaultName: defaultName,
	}, nil
}

// ProviderFor returns the chat provider responsible for the given model
func (r *Resolver) ProviderFor(model string) (llm.ChatProvider, error) {
	name := r.providerNameFor(model)
	return r.client(name)
}

// providerNameFor routes a model name to a configured provider.
// Routing is by model family; unknown families go to the default.
func (r *Resolver) providerNameFor(model string) string {
	normalized := strings.ToLower(llm.NormalizeModelName(model))

	var wantType llm.ProviderType
	switch {
	case strings.HasPrefix(normalized, "claude"):
		wantType = llm.ProviderAnthropic
	case strings.HasPrefix(normalized, "gpt") ||
		strings.HasPrefix(normalized, "o1") ||
		strings.HasPrefix(normalized, "o3") ||
		strings.HasPrefix(normalized, "o4") ||
		strings.HasPrefix(normalized, "chatgpt"):
		wantType = llm.ProviderOpenAI
	default:
		return r.defaultName
	}

	for name, cfg := range r.configs {
		if cfg.Type == wantType {
			return name
		}
	}
	return r.defaultName
}

func (r *Resolver) client(name string) (llm.ChatProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[name]; ok {
		return c, nil
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, types.NewError(types.CONFIG_PROVIDER_MISSING,
			fmt.Sprintf("provider %q is not configured", name))
	}

	c, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	r.clients[name] = c

	return c, nil
}
