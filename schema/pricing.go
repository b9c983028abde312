package schema

// DefaultModel is the pricing key used for unknown or missing model names.
const DefaultModel = "sonnet"

// ModelRate is the USD price per million tokens for each tier.
type ModelRate struct {
	Input      float64 `mapstructure:"input" json:"input"`
	Output     float64 `mapstructure:"output" json:"output"`
	CacheRead  float64 `mapstructure:"cache_read" json:"cache_read"`
	CacheWrite float64 `mapstructure:"cache_write" json:"cache_write"`
}

// DefaultPricing returns the built-in rate table. Config may override any row.
func DefaultPricing() map[string]ModelRate {
	return map[string]ModelRate{
		"opus":   {Input: 15.00, Output: 75.00, CacheRead: 1.50, CacheWrite: 18.75},
		"sonnet": {Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75},
		"haiku":  {Input: 0.25, Output: 1.25, CacheRead: 0.025, CacheWrite: 0.3125},
		"gpt4o":  {Input: 2.50, Output: 10.00, CacheRead: 0.25, CacheWrite: 3.125},
		"gemini": {Input: 1.25, Output: 5.00, CacheRead: 0.3125, CacheWrite: 1.5625},
		"cursor": {},
	}
}
