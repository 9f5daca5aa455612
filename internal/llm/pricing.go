package llm

import (
	"math"
	"strings"
)

// ModelPricing contains prices for a model in USD per 1000 tokens, with
// prompt and completion tokens priced independently.
type ModelPricing struct {
	PromptPer1K     float64
	CompletionPer1K float64
}

// defaultPricing is the conservative fallback tier applied to models with
// no table entry. It deliberately overestimates: an unpriced model must
// still be billed, never dropped.
var defaultPricing = ModelPricing{PromptPer1K: 0.03, CompletionPer1K: 0.06}

// modelPricing lists exact model prices. Dated snapshots that are not
// listed here resolve through familyPricing below.
var modelPricing = map[string]ModelPricing{
	"gpt-4o":              {PromptPer1K: 0.005, CompletionPer1K: 0.015},
	"gpt-4o-mini":         {PromptPer1K: 0.00015, CompletionPer1K: 0.0006},
	"gpt-4":               {PromptPer1K: 0.03, CompletionPer1K: 0.06},
	"gpt-4-turbo":         {PromptPer1K: 0.01, CompletionPer1K: 0.03},
	"gpt-4-turbo-preview": {PromptPer1K: 0.01, CompletionPer1K: 0.03},
	"gpt-3.5-turbo":       {PromptPer1K: 0.0005, CompletionPer1K: 0.0015},
	"gpt-3.5-turbo-16k":   {PromptPer1K: 0.003, CompletionPer1K: 0.004},
	"o1":                  {PromptPer1K: 0.015, CompletionPer1K: 0.06},
	"o1-preview":          {PromptPer1K: 0.015, CompletionPer1K: 0.06},
	"o1-mini":             {PromptPer1K: 0.003, CompletionPer1K: 0.012},
	"o3-mini":             {PromptPer1K: 0.0011, CompletionPer1K: 0.0044},
	"claude-3-opus":       {PromptPer1K: 0.015, CompletionPer1K: 0.075},
	"claude-3-5-sonnet":   {PromptPer1K: 0.003, CompletionPer1K: 0.015},
	"claude-3-sonnet":     {PromptPer1K: 0.003, CompletionPer1K: 0.015},
	"claude-3-haiku":      {PromptPer1K: 0.00025, CompletionPer1K: 0.00125},
	"gemini-1.5-pro":      {PromptPer1K: 0.007, CompletionPer1K: 0.021},
	"gemini-1.5-flash":    {PromptPer1K: 0.00035, CompletionPer1K: 0.00105},
}

// pricingFamily maps a model family prefix to its pricing tier. Ordering
// matters: more specific prefixes come first.
type pricingFamily struct {
	prefix  string
	pricing ModelPricing
}

var familyPricing = []pricingFamily{
	{prefix: "gpt-4o-mini", pricing: ModelPricing{PromptPer1K: 0.00015, CompletionPer1K: 0.0006}},
	{prefix: "gpt-4o", pricing: ModelPricing{PromptPer1K: 0.005, CompletionPer1K: 0.015}},
	{prefix: "gpt-4-turbo", pricing: ModelPricing{PromptPer1K: 0.01, CompletionPer1K: 0.03}},
	{prefix: "gpt-4.1", pricing: ModelPricing{PromptPer1K: 0.002, CompletionPer1K: 0.008}},
	{prefix: "gpt-3.5-turbo", pricing: ModelPricing{PromptPer1K: 0.0005, CompletionPer1K: 0.0015}},
	{prefix: "o1-mini", pricing: ModelPricing{PromptPer1K: 0.003, CompletionPer1K: 0.012}},
	{prefix: "o1", pricing: ModelPricing{PromptPer1K: 0.015, CompletionPer1K: 0.06}},
	{prefix: "o3", pricing: ModelPricing{PromptPer1K: 0.0011, CompletionPer1K: 0.0044}},
	{prefix: "claude-3-5-sonnet", pricing: ModelPricing{PromptPer1K: 0.003, CompletionPer1K: 0.015}},
	{prefix: "claude-3-opus", pricing: ModelPricing{PromptPer1K: 0.015, CompletionPer1K: 0.075}},
	{prefix: "claude-3-haiku", pricing: ModelPricing{PromptPer1K: 0.00025, CompletionPer1K: 0.00125}},
	{prefix: "claude-3", pricing: ModelPricing{PromptPer1K: 0.003, CompletionPer1K: 0.015}},
	{prefix: "gemini-1.5-flash", pricing: ModelPricing{PromptPer1K: 0.00035, CompletionPer1K: 0.00105}},
	{prefix: "gemini-1.5", pricing: ModelPricing{PromptPer1K: 0.007, CompletionPer1K: 0.021}},
	{prefix: "gemini", pricing: ModelPricing{PromptPer1K: 0.0005, CompletionPer1K: 0.0015}},
}

// PricingFor returns the pricing tier for a model identifier. Lookup order:
// exact match, longest matching family prefix, then the conservative
// default tier. The second return reports whether the model had a real
// table entry (exact or family).
func PricingFor(model string) (ModelPricing, bool) {
	model = strings.ToLower(strings.TrimSpace(model))

	if pricing, ok := modelPricing[model]; ok {
		return pricing, true
	}

	for _, family := range familyPricing {
		if strings.HasPrefix(model, family.prefix) {
			return family.pricing, true
		}
	}

	return defaultPricing, false
}

// CalculateCost computes the USD cost of one call, rounded to 6 decimal
// places. Unknown models fall back to the default tier rather than failing.
func CalculateCost(model string, promptTokens, completionTokens int) float64 {
	pricing, _ := PricingFor(model)

	promptCost := float64(promptTokens) / 1000.0 * pricing.PromptPer1K
	completionCost := float64(completionTokens) / 1000.0 * pricing.CompletionPer1K

	return roundCost(promptCost + completionCost)
}

// roundCost rounds a USD amount to 6 decimal places, the precision stored
// on usage records and meeting totals.
func roundCost(cost float64) float64 {
	return math.Round(cost*1e6) / 1e6
}
