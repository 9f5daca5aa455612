package llm

import "strings"

// TokenLimitParam names the request parameter a model accepts to bound
// output length.
type TokenLimitParam string

const (
	// TokenParamMaxTokens is the legacy parameter accepted by most chat models.
	TokenParamMaxTokens TokenLimitParam = "max_tokens"

	// TokenParamMaxCompletionTokens is required by the reasoning model
	// families, which reject max_tokens outright.
	TokenParamMaxCompletionTokens TokenLimitParam = "max_completion_tokens"
)

// ModelCapabilities answers, for one model identifier, every capability
// question the request shaping code asks. Keeping all four answers in a
// single entry prevents the JSON-mode, vision, file-input, and token-param
// views from drifting apart as models are added.
type ModelCapabilities struct {
	JSONMode   bool
	Vision     bool
	FileInput  bool
	TokenParam TokenLimitParam
}

// capabilityRule binds a model identifier pattern to its capabilities.
// Exact rules match the whole identifier; prefix rules match identifier
// families (dated snapshots, fine-tune suffixes).
type capabilityRule struct {
	pattern string
	prefix  bool
	caps    ModelCapabilities
}

// capabilityRules is the single source of truth for model capabilities.
// Ordering matters for prefix rules: more specific families come first.
// Model rollout changes this table, not the shaping logic around it.
var capabilityRules = []capabilityRule{
	// OpenAI omni family: JSON mode, vision, and direct file input.
	{pattern: "gpt-4o", caps: ModelCapabilities{JSONMode: true, Vision: true, FileInput: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4o-mini", caps: ModelCapabilities{JSONMode: true, Vision: true, FileInput: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4o-", prefix: true, caps: ModelCapabilities{JSONMode: true, Vision: true, FileInput: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4o-mini-", prefix: true, caps: ModelCapabilities{JSONMode: true, Vision: true, FileInput: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4.1", prefix: true, caps: ModelCapabilities{JSONMode: true, Vision: true, FileInput: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "chatgpt-4o-", prefix: true, caps: ModelCapabilities{JSONMode: true, Vision: true, TokenParam: TokenParamMaxTokens}},

	// Reasoning family: JSON mode but no sampling temperature, and the
	// newer token-limit parameter.
	{pattern: "o1", caps: ModelCapabilities{JSONMode: true, Vision: true, TokenParam: TokenParamMaxCompletionTokens}},
	{pattern: "o1-", prefix: true, caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxCompletionTokens}},
	{pattern: "o3-", prefix: true, caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxCompletionTokens}},
	{pattern: "o4-", prefix: true, caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxCompletionTokens}},

	// GPT-4 Turbo: JSON mode, vision on the release models, no file input.
	{pattern: "gpt-4-turbo", caps: ModelCapabilities{JSONMode: true, Vision: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4-turbo-", prefix: true, caps: ModelCapabilities{JSONMode: true, Vision: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4-turbo-preview", caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4-1106-preview", caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4-0125-preview", caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxTokens}},

	// Base GPT-4 predates JSON mode entirely.
	{pattern: "gpt-4", caps: ModelCapabilities{TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-4-0", prefix: true, caps: ModelCapabilities{TokenParam: TokenParamMaxTokens}},

	{pattern: "gpt-3.5-turbo", caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gpt-3.5-turbo-", prefix: true, caps: ModelCapabilities{JSONMode: true, TokenParam: TokenParamMaxTokens}},

	// Anthropic Claude: vision and native PDF input, no JSON response
	// contract (structured output is prompt-enforced only).
	{pattern: "claude-3-5-", prefix: true, caps: ModelCapabilities{Vision: true, FileInput: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "claude-3-", prefix: true, caps: ModelCapabilities{Vision: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "claude-", prefix: true, caps: ModelCapabilities{TokenParam: TokenParamMaxTokens}},

	// Google Gemini: JSON response MIME type and vision.
	{pattern: "gemini-1.5-", prefix: true, caps: ModelCapabilities{JSONMode: true, Vision: true, FileInput: true, TokenParam: TokenParamMaxTokens}},
	{pattern: "gemini-", prefix: true, caps: ModelCapabilities{JSONMode: true, Vision: true, TokenParam: TokenParamMaxTokens}},
}

// failSafeCapabilities is returned for unknown model identifiers: no JSON
// mode, no vision, no file input, legacy token-limit parameter.
var failSafeCapabilities = ModelCapabilities{TokenParam: TokenParamMaxTokens}

// Capabilities resolves the capabilities for a model identifier.
// Exact matches win; otherwise the first matching family-prefix rule
// applies; unknown identifiers fail safe.
func Capabilities(model string) ModelCapabilities {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return failSafeCapabilities
	}

	for _, rule := range capabilityRules {
		if !rule.prefix && rule.pattern == model {
			return rule.caps
		}
	}

	for _, rule := range capabilityRules {
		if rule.prefix && strings.HasPrefix(model, rule.pattern) {
			return rule.caps
		}
	}

	return failSafeCapabilities
}

// SupportsJSONMode reports whether the model accepts a structured-JSON
// response contract.
func SupportsJSONMode(model string) bool {
	return Capabilities(model).JSONMode
}

// SupportsVision reports whether the model accepts inline image input.
func SupportsVision(model string) bool {
	return Capabilities(model).Vision
}

// SupportsFileInput reports whether the model accepts inline document input.
func SupportsFileInput(model string) bool {
	return Capabilities(model).FileInput
}

// TokenLimitParamFor returns the output-length parameter name the model
// accepts.
func TokenLimitParamFor(model string) TokenLimitParam {
	return Capabilities(model).TokenParam
}
