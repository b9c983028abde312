package daily

import (
	"strings"

	"github.com/huangsam/dailyxp/core/classify"
	"github.com/huangsam/dailyxp/core/tokens"
	"github.com/huangsam/dailyxp/schema"
)

// Human contractor rates used for the dev-equivalent estimate.
const (
	DevRate            = 75.0
	DevLOCPerHour      = 50.0
	WriterRate         = 50.0
	WriterWordsPerHour = 500.0
)

// ComputeStats derives the stats block from the rest of a record. It reads
// value_score and shipped from the accomplishments as stored.
func ComputeStats(rec schema.DailyRecord) schema.Stats {
	stats := schema.Stats{
		PlatformBreakdown: make(map[string]int),
		ScoreBreakdown:    []schema.ScoreItem{},
	}

	for _, a := range rec.Accomplishments {
		stats.PlatformBreakdown[platformBucket(a.Type)]++
		stats.WordsToday += a.Words
		if a.ValueScore > 0 {
			stats.OutputScore += a.ValueScore
			stats.ScoreBreakdown = append(stats.ScoreBreakdown, schema.ScoreItem{
				Type:   a.Type,
				Title:  a.Title,
				Points: a.ValueScore,
			})
		}
		if a.Shipped {
			stats.ShippedCount++
		} else {
			stats.DraftCount++
		}
		if a.Timestamp != "" {
			if stats.FirstActivity == "" || a.Timestamp < stats.FirstActivity {
				stats.FirstActivity = a.Timestamp
			}
			if a.Timestamp > stats.LastActivity {
				stats.LastActivity = a.Timestamp
			}
		}
	}
	if n := len(rec.Accomplishments); n > 0 {
		stats.ShipRate = tokens.Round(float64(stats.ShippedCount)/float64(n), 2)
	}

	for _, d := range rec.Pipeline.DraftsActive {
		stats.PipelineWords += d.Words
	}
	stats.FinalsCount = len(rec.Pipeline.FinalizedToday)
	stats.LetterGrade = LetterGrade(stats.OutputScore)

	for _, e := range rec.TokenUsage {
		stats.TotalTokens += e.TotalTokens()
	}
	stats.AgentCost = tokens.DayCost(rec.TokenUsage)
	stats.EfficiencyRating = Efficiency(stats.OutputScore, stats.AgentCost)

	stats.DevEquivalent = devEquivalent(rec.GitSummary.CodeLOC, stats.WordsToday)
	if stats.AgentCost > 0 {
		stats.CostSavings = tokens.Round(stats.DevEquivalent.Total-stats.AgentCost, 2)
		stats.ROIMultiplier = tokens.Round(stats.DevEquivalent.Total/stats.AgentCost, 1)
	} else {
		stats.CostSavings = stats.DevEquivalent.Total
	}
	return stats
}

// Efficiency is points per dollar, or 0 when either side is empty.
func Efficiency(score int, cost float64) float64 {
	if score <= 0 || cost <= 0 {
		return 0
	}
	return tokens.Round(float64(score)/cost, 2)
}

// platformBucket maps a type to its platform breakdown key.
func platformBucket(typ string) string {
	switch {
	case strings.HasPrefix(typ, "partner_"), strings.HasPrefix(typ, "client_"):
		return "ops"
	case strings.HasPrefix(typ, "website_"):
		return "website"
	}
	for _, plat := range classify.Platforms {
		if strings.HasPrefix(typ, plat+"_") {
			return plat
		}
	}
	return "other"
}

func devEquivalent(codeLOC, words int) schema.DevEquivalent {
	eq := schema.DevEquivalent{CodeLOC: codeLOC, ContentWords: words}
	if codeLOC > 0 {
		eq.DevHours = tokens.Round(float64(codeLOC)/DevLOCPerHour, 2)
	}
	if words > 0 {
		eq.WriterHours = tokens.Round(float64(words)/WriterWordsPerHour, 2)
	}
	eq.DevCost = tokens.Round(eq.DevHours*DevRate, 2)
	eq.WriterCost = tokens.Round(eq.WriterHours*WriterRate, 2)
	eq.Total = tokens.Round(eq.DevCost+eq.WriterCost, 2)
	return eq
}
