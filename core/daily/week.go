package daily

import (
	"github.com/huangsam/dailyxp/core/tokens"
	"github.com/huangsam/dailyxp/schema"
)

// DaySummary is one row of a multi-day summary.
type DaySummary struct {
	Date       string  `json:"date"`
	Score      int     `json:"output_score"`
	Grade      string  `json:"letter_grade"`
	Items      int     `json:"accomplishments"`
	Shipped    int     `json:"shipped_count"`
	Words      int     `json:"words_today"`
	Commits    int     `json:"commits"`
	Cost       float64 `json:"agent_cost"`
	Efficiency float64 `json:"efficiency_rating"`
}

// WeekSummary aggregates consecutive day summaries.
type WeekSummary struct {
	Days       []DaySummary `json:"days"`
	TotalScore int          `json:"total_score"`
	AvgScore   float64      `json:"avg_score"`
	BestDay    string       `json:"best_day,omitempty"`
	TotalWords int          `json:"total_words"`
	TotalCost  float64      `json:"total_cost"`
	Shipped    int          `json:"shipped_count"`
	Grade      string       `json:"avg_grade"`
}

// Summarize builds a summary from records in date order. Days without a
// record are not listed.
func Summarize(records []schema.DailyRecord) WeekSummary {
	summary := WeekSummary{Days: []DaySummary{}}
	best := -1
	for _, rec := range records {
		s := rec.Stats
		day := DaySummary{
			Date:       rec.Date,
			Score:      s.OutputScore,
			Grade:      s.LetterGrade,
			Items:      len(rec.Accomplishments),
			Shipped:    s.ShippedCount,
			Words:      s.WordsToday,
			Commits:    rec.GitSummary.CommitsToday,
			Cost:       s.AgentCost,
			Efficiency: s.EfficiencyRating,
		}
		summary.Days = append(summary.Days, day)
		summary.TotalScore += day.Score
		summary.TotalWords += day.Words
		summary.TotalCost += day.Cost
		summary.Shipped += day.Shipped
		if day.Score > best {
			best = day.Score
			summary.BestDay = day.Date
		}
	}
	summary.TotalCost = tokens.Round(summary.TotalCost, 4)
	if n := len(summary.Days); n > 0 {
		summary.AvgScore = tokens.Round(float64(summary.TotalScore)/float64(n), 1)
	}
	summary.Grade = Grade(GradeLadder, summary.AvgScore)
	return summary
}
