package llm

import (
	"fmt"
)

// Role represents the role of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// PartKind identifies the type of a message content part.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
	PartFile  PartKind = "file"
)

// Part is one piece of message content. Text parts carry prompt text;
// image and file parts carry inline binary payloads for models with
// vision or direct file input.
type Part struct {
	Kind     PartKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	MIMEType string   `json:"mime_type,omitempty"`
	Filename string   `json:"filename,omitempty"`
	Data     []byte   `json:"data,omitempty"`
}

// TextPart creates a text content part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// ImagePart creates an inline image content part.
func ImagePart(mimeType string, data []byte) Part {
	return Part{Kind: PartImage, MIMEType: mimeType, Data: data}
}

// FilePart creates an inline document content part.
func FilePart(filename, mimeType string, data []byte) Part {
	return Part{Kind: PartFile, Filename: filename, MIMEType: mimeType, Data: data}
}

// Message represents a single message in a conversation with a model.
// Content holds plain text; Parts, when non-empty, holds multimodal
// content and takes precedence over Content.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	Parts   []Part `json:"parts,omitempty"`
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewMultimodalMessage creates a user message from content parts.
func NewMultimodalMessage(parts ...Part) Message {
	return Message{Role: RoleUser, Parts: parts}
}

// Validate checks if the message is valid.
func (m Message) Validate() error {
	if !m.Role.IsValid() {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	if m.Content == "" && len(m.Parts) == 0 {
		return fmt.Errorf("%s message must have content", m.Role)
	}
	for i, p := range m.Parts {
		switch p.Kind {
		case PartText:
			if p.Text == "" {
				return fmt.Errorf("part %d: text part must have text", i)
			}
		case PartImage, PartFile:
			if len(p.Data) == 0 {
				return fmt.Errorf("part %d: %s part must have data", i, p.Kind)
			}
			if p.MIMEType == "" {
				return fmt.Errorf("part %d: %s part must have a MIME type", i, p.Kind)
			}
		default:
			return fmt.Errorf("part %d: unknown part kind %q", i, p.Kind)
		}
	}
	return nil
}

// CompletionRequest represents a request to generate a chat completion.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`

	// JSONMode requests a contractual JSON reply. Only set for models the
	// capability registry reports as supporting it.
	JSONMode bool `json:"json_mode,omitempty"`

	// TokenParam names the output-length parameter the model accepts.
	// Reasoning-family models reject the legacy max_tokens parameter
	// (and a sampling temperature) and require max_completion_tokens.
	TokenParam TokenLimitParam `json:"token_param,omitempty"`
}

// Validate checks if the completion request is valid.
func (r CompletionRequest) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	for i, msg := range r.Messages {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", r.Temperature)
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d", r.MaxTokens)
	}
	return nil
}

// FinishReason indicates why model generation stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
	FinishReasonRefusal       FinishReason = "refusal"
	FinishReasonError         FinishReason = "error"
)

// String returns the string representation of FinishReason.
func (f FinishReason) String() string {
	return string(f)
}

// TokenUsage contains token counts reported for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse represents the response from a chat completion call.
type CompletionResponse struct {
	// ID is a unique identifier for this completion.
	ID string `json:"id"`

	// Model is the model that generated this response.
	Model string `json:"model"`

	// Content is the assistant's reply text.
	Content string `json:"content"`

	// FinishReason indicates why generation stopped.
	FinishReason FinishReason `json:"finish_reason"`

	// Usage contains token counts reported by the provider.
	Usage TokenUsage `json:"usage"`
}
