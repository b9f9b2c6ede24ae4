// Package cost computes and records per-call API spend for the scan
// pipeline.
package cost

import (
	"github.com/sells-group/visibility-cli/internal/model"
)

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic  map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     map[string]ModelRate `yaml:"openai" mapstructure:"openai"`
	Gemini     map[string]ModelRate `yaml:"gemini" mapstructure:"gemini"`
	Perplexity PerplexityRate       `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// PerplexityRate holds Perplexity pricing (flat per query).
type PerplexityRate struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Call computes the cost of one provider call. Token-priced providers
// use the per-model rate table; Perplexity is flat per query. Unknown
// provider/model combinations cost 0.
func (c *Calculator) Call(provider, modelID string, usage model.TokenUsage) float64 {
	var table map[string]ModelRate
	switch provider {
	case "anthropic":
		table = c.rates.Anthropic
	case "openai":
		table = c.rates.OpenAI
	case "gemini":
		table = c.rates.Gemini
	case "perplexity":
		return c.rates.Perplexity.PerQuery
	default:
		return 0
	}

	rate, ok := table[modelID]
	if !ok {
		return 0
	}

	inCost := (float64(usage.InputTokens) / 1e6) * rate.Input
	outCost := (float64(usage.OutputTokens) / 1e6) * rate.Output
	return inCost + outCost
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		OpenAI: map[string]ModelRate{
			"gpt-4o-mini": {Input: 0.15, Output: 0.60},
			"gpt-4o":      {Input: 2.50, Output: 10.00},
		},
		Gemini: map[string]ModelRate{
			"gemini-2.0-flash": {Input: 0.10, Output: 0.40},
			"gemini-2.5-pro":   {Input: 1.25, Output: 10.00},
		},
		Perplexity: PerplexityRate{PerQuery: 0.005},
	}
}
