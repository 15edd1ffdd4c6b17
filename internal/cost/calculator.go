// Package cost computes per-call cost bookkeeping for provider usage records.
// Cost is metadata attached to results; it never feeds confidence scoring.
package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Vision map[string]VisionRate `yaml:"vision" mapstructure:"vision"`
	LLM    map[string]LLMRate    `yaml:"llm" mapstructure:"llm"`
}

// VisionRate holds flat per-image pricing for vision-family providers.
type VisionRate struct {
	PerImage float64 `yaml:"per_image" mapstructure:"per_image"`
}

// LLMRate holds token pricing (USD per million tokens) for LLM-family
// providers.
type LLMRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Calculator computes costs for provider usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// VisionCall computes the cost of a vision-family call from the image count.
// Unknown providers cost 0.
func (c *Calculator) VisionCall(providerName string, imageCount int) float64 {
	rate, ok := c.rates.Vision[providerName]
	if !ok {
		return 0
	}
	return float64(imageCount) * rate.PerImage
}

// LLMCall computes the cost of an LLM-family call from token counts.
// Unknown providers cost 0.
func (c *Calculator) LLMCall(providerName string, inputTokens, outputTokens int) float64 {
	rate, ok := c.rates.LLM[providerName]
	if !ok {
		return 0
	}
	inCost := (float64(inputTokens) / 1e6) * rate.Input
	outCost := (float64(outputTokens) / 1e6) * rate.Output
	return inCost + outCost
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Vision: map[string]VisionRate{
			"google-vision": {PerImage: 0.0015},
			"mistral-ocr":   {PerImage: 0.001},
		},
		LLM: map[string]LLMRate{
			"claude-vision": {Input: 0.80, Output: 4.00},
		},
	}
}
