package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities_ExactMatch(t *testing.T) {
	caps := Capabilities("gpt-4o")
	assert.True(t, caps.JSONMode)
	assert.True(t, caps.Vision)
	assert.True(t, caps.FileInput)
	assert.Equal(t, TokenParamMaxTokens, caps.TokenParam)
}

func TestCapabilities_ExactBeatsPrefix(t *testing.T) {
	// "gpt-4-turbo-preview" is also a prefix match for "gpt-4-turbo-",
	// but the exact entry (no vision) must win.
	caps := Capabilities("gpt-4-turbo-preview")
	assert.True(t, caps.JSONMode)
	assert.False(t, caps.Vision)
}

func TestCapabilities_DatedSnapshot(t *testing.T) {
	caps := Capabilities("gpt-4o-2024-08-06")
	assert.True(t, caps.JSONMode)
	assert.True(t, caps.Vision)
}

func TestCapabilities_ReasoningFamily(t *testing.T) {
	for _, model := range []string{"o1-mini", "o3-mini", "o4-mini"} {
		caps := Capabilities(model)
		assert.True(t, caps.JSONMode, model)
		assert.Equal(t, TokenParamMaxCompletionTokens, caps.TokenParam, model)
	}
}

func TestCapabilities_BaseGPT4NoJSONMode(t *testing.T) {
	assert.False(t, SupportsJSONMode("gpt-4"))
	assert.Equal(t, TokenParamMaxTokens, TokenLimitParamFor("gpt-4"))
}

func TestCapabilities_Claude(t *testing.T) {
	caps := Capabilities("claude-3-5-sonnet-20241022")
	assert.False(t, caps.JSONMode)
	assert.True(t, caps.Vision)
	assert.True(t, caps.FileInput)

	older := Capabilities("claude-3-haiku-20240307")
	assert.True(t, older.Vision)
	assert.False(t, older.FileInput)
}

func TestCapabilities_UnknownFailsSafe(t *testing.T) {
	caps := Capabilities("future-model-9000")
	assert.False(t, caps.JSONMode)
	assert.False(t, caps.Vision)
	assert.False(t, caps.FileInput)
	assert.Equal(t, TokenParamMaxTokens, caps.TokenParam)
}

func TestCapabilities_NormalizesCaseAndSpace(t *testing.T) {
	assert.True(t, SupportsJSONMode("  GPT-4o  "))
}

func TestCapabilities_Empty(t *testing.T) {
	caps := Capabilities("")
	assert.Equal(t, failSafeCapabilities, caps)
}
