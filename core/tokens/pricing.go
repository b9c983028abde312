// Package tokens accounts for AI assistant token usage and its cost.
package tokens

import (
	"math"
	"strings"

	"github.com/huangsam/dailyxp/schema"
)

// perMillion is the token count the rate table is quoted in.
const perMillion = 1_000_000

// MapModel maps an assistant model identifier to a pricing key.
// Unrecognized names are returned lowercased so they fall back to the
// default rate when priced.
func MapModel(raw string) string {
	m := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case m == "":
		return "unknown"
	case strings.Contains(m, "opus"):
		return "opus"
	case strings.Contains(m, "sonnet"):
		return "sonnet"
	case strings.Contains(m, "haiku"):
		return "haiku"
	case strings.Contains(m, "gpt-4o"), strings.Contains(m, "gpt4o"):
		return "gpt4o"
	case strings.HasPrefix(m, "gpt-5"), strings.Contains(m, "codex"):
		return "gpt4o"
	case strings.Contains(m, "gemini"):
		return "gemini"
	case strings.HasPrefix(m, "composer-"):
		return "cursor"
	}
	return m
}

// RateFor returns the rate of a model, or the default model's rate when the
// model is not in the table.
func RateFor(pricing map[string]schema.ModelRate, model, defaultModel string) schema.ModelRate {
	if rate, ok := pricing[strings.ToLower(model)]; ok {
		return rate
	}
	if rate, ok := pricing[defaultModel]; ok {
		return rate
	}
	return schema.DefaultPricing()[schema.DefaultModel]
}

// usage is a four-tier token tally.
type usage struct {
	input, output, cacheRead, cacheWrite int64
}

func (u *usage) add(o usage) {
	u.input += o.input
	u.output += o.output
	u.cacheRead += o.cacheRead
	u.cacheWrite += o.cacheWrite
}

func (u usage) cost(rate schema.ModelRate) float64 {
	return (float64(u.input)*rate.Input +
		float64(u.output)*rate.Output +
		float64(u.cacheRead)*rate.CacheRead +
		float64(u.cacheWrite)*rate.CacheWrite) / perMillion
}

// Cost prices an entry across all four tiers, rounded to 4 decimals.
func Cost(e schema.TokenUsageEntry, pricing map[string]schema.ModelRate, defaultModel string) float64 {
	u := usage{e.InputTokens, e.OutputTokens, e.CacheReadTokens, e.CacheWriteTokens}
	return Round(u.cost(RateFor(pricing, e.Model, defaultModel)), 4)
}

// DayCost sums the cost of every entry.
func DayCost(entries []schema.TokenUsageEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Cost
	}
	return Round(total, 4)
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
