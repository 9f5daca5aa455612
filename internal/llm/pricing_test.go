package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricingFor_ExactMatch(t *testing.T) {
	pricing, known := PricingFor("gpt-4o-mini")
	assert.True(t, known)
	assert.Equal(t, 0.00015, pricing.PromptPer1K)
	assert.Equal(t, 0.0006, pricing.CompletionPer1K)
}

func TestPricingFor_FamilyFallback(t *testing.T) {
	pricing, known := PricingFor("gpt-4o-mini-2024-07-18")
	assert.True(t, known)
	assert.Equal(t, 0.00015, pricing.PromptPer1K)
}

func TestPricingFor_MiniBeforeBase(t *testing.T) {
	mini, _ := PricingFor("gpt-4o-mini-2024-07-18")
	base, _ := PricingFor("gpt-4o-2024-08-06")
	assert.Less(t, mini.PromptPer1K, base.PromptPer1K)
}

func TestPricingFor_UnknownUsesDefault(t *testing.T) {
	pricing, known := PricingFor("mystery-model")
	assert.False(t, known)
	assert.Equal(t, defaultPricing, pricing)
}

func TestPricingFor_CaseInsensitive(t *testing.T) {
	pricing, known := PricingFor("GPT-4O")
	assert.True(t, known)
	assert.Equal(t, 0.005, pricing.PromptPer1K)
}

func TestCalculateCost(t *testing.T) {
	// gpt-4o: 0.005/1K prompt, 0.015/1K completion
	cost := CalculateCost("gpt-4o", 1000, 1000)
	assert.Equal(t, 0.02, cost)
}

func TestCalculateCost_Rounding(t *testing.T) {
	// 123 prompt tokens of gpt-4o-mini: 123/1000*0.00015 = 0.00001845,
	// rounded to 6 places -> 0.000018
	cost := CalculateCost("gpt-4o-mini", 123, 0)
	assert.Equal(t, 0.000018, cost)
}

func TestCalculateCost_ZeroTokens(t *testing.T) {
	assert.Equal(t, 0.0, CalculateCost("gpt-4o", 0, 0))
}

func TestCalculateCost_UnknownModelStillBilled(t *testing.T) {
	cost := CalculateCost("mystery-model", 1000, 1000)
	assert.Equal(t, 0.09, cost)
}
