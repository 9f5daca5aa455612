package llm

import (
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// ToLangchainMessages converts boardroom messages to langchaingo
// MessageContent, expanding multimodal parts into the matching content
// part types (inline binary for images and documents).
func ToLangchainMessages(messages []Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		var role schema.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			role = schema.ChatMessageTypeSystem
		case RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}

		var parts []llms.ContentPart
		if len(msg.Parts) > 0 {
			parts = make([]llms.ContentPart, 0, len(msg.Parts))
			for _, p := range msg.Parts {
				switch p.Kind {
				case PartText:
					parts = append(parts, llms.TextPart(p.Text))
				case PartImage, PartFile:
					parts = append(parts, llms.BinaryPart(p.MIMEType, p.Data))
				}
			}
		} else {
			parts = []llms.ContentPart{llms.TextPart(msg.Content)}
		}

		result = append(result, llms.MessageContent{Role: role, Parts: parts})
	}

	return result
}

// BuildCallOptions converts a completion request into langchaingo call
// options.
//
// The reasoning model families accept only the max_completion_tokens
// output bound and reject an explicit sampling temperature; for those the
// temperature option is omitted entirely.
func BuildCallOptions(req CompletionRequest) []llms.CallOption {
	opts := make([]llms.CallOption, 0, 4)

	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}

	if req.Temperature > 0 && req.TokenParam != TokenParamMaxCompletionTokens {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}

	// langchaingo exposes a single output bound; each provider adapter
	// maps it onto its own wire parameter, so TokenParam only decides
	// whether temperature is sent.
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	return opts
}

// FromLangchainResponse converts a langchaingo content response into a
// CompletionResponse, pulling token counts out of the provider's
// generation metadata when present.
func FromLangchainResponse(resp *llms.ContentResponse, model string) *CompletionResponse {
	if resp == nil || len(resp.Choices) == 0 {
		return &CompletionResponse{
			ID:           uuid.New().String(),
			Model:        model,
			FinishReason: FinishReasonError,
		}
	}

	choice := resp.Choices[0]

	finishReason := FinishReasonStop
	switch choice.StopReason {
	case "length", "max_tokens":
		finishReason = FinishReasonLength
	case "content_filter":
		finishReason = FinishReasonContentFilter
	}

	return &CompletionResponse{
		ID:           uuid.New().String(),
		Model:        model,
		Content:      choice.Content,
		FinishReason: finishReason,
		Usage:        usageFromGenerationInfo(choice.GenerationInfo),
	}
}

// usageFromGenerationInfo extracts token counts from langchaingo's
// provider-specific generation metadata. Providers report the counts under
// slightly different keys and numeric types.
func usageFromGenerationInfo(info map[string]any) TokenUsage {
	usage := TokenUsage{
		PromptTokens:     intFromInfo(info, "PromptTokens", "prompt_tokens", "input_tokens"),
		CompletionTokens: intFromInfo(info, "CompletionTokens", "completion_tokens", "output_tokens"),
	}
	usage.TotalTokens = intFromInfo(info, "TotalTokens", "total_tokens")
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return usage
}

func intFromInfo(info map[string]any, keys ...string) int {
	if info == nil {
		return 0
	}
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
