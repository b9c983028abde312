package progression

import (
	"math"

	"github.com/huangsam/dailyxp/core/daily"
	"github.com/huangsam/dailyxp/core/tokens"
	"github.com/huangsam/dailyxp/schema"
)

// Bonus keys written to ScoringLogEntry.Bonuses.
const (
	BonusEfficiency = "efficiency"
	BonusVelocity   = "velocity"
	BonusShip       = "ship"
	BonusStreak     = "streak"
	BonusQuality    = "quality"
)

// GradeLadderV2 is the recalibrated ladder on raw score.
var GradeLadderV2 = []daily.GradeStep{
	{Threshold: 850, Grade: "S+"},
	{Threshold: 600, Grade: "S"},
	{Threshold: 450, Grade: "A+"},
	{Threshold: 300, Grade: "A"},
	{Threshold: 150, Grade: "B"},
	{Threshold: 50, Grade: "C"},
	{Threshold: 0, Grade: "D"},
}

// GradeLadderV3 is applied to v3 XP rather than raw score.
var GradeLadderV3 = []daily.GradeStep{
	{Threshold: 1200, Grade: "S+"},
	{Threshold: 850, Grade: "S"},
	{Threshold: 600, Grade: "A+"},
	{Threshold: 400, Grade: "A"},
	{Threshold: 200, Grade: "B"},
	{Threshold: 75, Grade: "C"},
	{Threshold: 0, Grade: "D"},
}

// ascendingChain extends the chain when the day beats the previous one and
// resets it to 1 otherwise.
func ascendingChain(prev *schema.ScoringLogEntry, raw int) int {
	if prev != nil && raw > prev.RawScore {
		return max(prev.AscendingChain, 1) + 1
	}
	return 1
}

// chainMultiplier is 1.0 at chain 1 and grows 0.1 per link, capped at 1.5.
func chainMultiplier(chain int) float64 {
	return math.Min(1+0.1*float64(chain-1), 1.5)
}

// pointsPerDollar is 0 when there is no cost to divide by.
func pointsPerDollar(d schema.DaySignals) float64 {
	if d.AgentCost <= 0 {
		return 0
	}
	return float64(d.RawScore) / d.AgentCost
}

// steppedBonuses are the v1 and v2 efficiency, velocity and ship bonuses.
func steppedBonuses(d schema.DaySignals) map[string]float64 {
	b := map[string]float64{BonusEfficiency: 0, BonusVelocity: 0, BonusShip: 0}
	switch ppd := pointsPerDollar(d); {
	case ppd > 100:
		b[BonusEfficiency] = 0.15
	case ppd > 50:
		b[BonusEfficiency] = 0.10
	case ppd > 25:
		b[BonusEfficiency] = 0.05
	}
	switch {
	case d.Commits >= 20:
		b[BonusVelocity] = 0.10
	case d.Commits >= 10:
		b[BonusVelocity] = 0.05
	}
	switch {
	case d.ShipRate >= 1.0:
		b[BonusShip] = 0.10
	case d.ShipRate >= 0.8:
		b[BonusShip] = 0.05
	}
	return b
}

func sumBonuses(b map[string]float64, keys ...string) float64 {
	var total float64
	for _, k := range keys {
		total += b[k]
	}
	return total
}

// V1 is the ascending-chain baseline.
type V1 struct{}

// Version implements Algorithm.
func (V1) Version() schema.EngineVersion { return schema.EngineV1 }

// ClassWindow implements Algorithm.
func (V1) ClassWindow() int { return 0 }

// Score implements Algorithm.
func (V1) Score(prev *schema.ScoringLogEntry, d schema.DaySignals, _ int) schema.ScoringLogEntry {
	chain := ascendingChain(prev, d.RawScore)
	mult := chainMultiplier(chain)
	bonuses := steppedBonuses(d)
	total := mult * (1 + sumBonuses(bonuses, BonusEfficiency, BonusVelocity, BonusShip))
	return schema.ScoringLogEntry{
		DaySignals:      d,
		AscendingChain:  chain,
		ChainMultiplier: tokens.Round(mult, 2),
		Bonuses:         bonuses,
		TotalMultiplier: tokens.Round(total, 4),
		XP:              tokens.Round(float64(d.RawScore)*total, 1),
		Grade:           daily.LetterGrade(d.RawScore),
	}
}

// V2 adds an activity streak bonus and floors XP.
type V2 struct{}

// Version implements Algorithm.
func (V2) Version() schema.EngineVersion { return schema.EngineV2 }

// ClassWindow implements Algorithm.
func (V2) ClassWindow() int { return 7 }

// Score implements Algorithm.
func (V2) Score(prev *schema.ScoringLogEntry, d schema.DaySignals, streak int) schema.ScoringLogEntry {
	chain := ascendingChain(prev, d.RawScore)
	mult := chainMultiplier(chain)
	bonuses := steppedBonuses(d)
	bonuses[BonusStreak] = tokens.Round(math.Min(0.02*float64(max(streak-1, 0)), 0.10), 2)
	total := mult * (1 + sumBonuses(bonuses, BonusEfficiency, BonusVelocity, BonusShip, BonusStreak))
	return schema.ScoringLogEntry{
		DaySignals:      d,
		AscendingChain:  chain,
		ChainMultiplier: tokens.Round(mult, 2),
		StreakDays:      streak,
		Bonuses:         bonuses,
		TotalMultiplier: tokens.Round(total, 4),
		XP:              math.Floor(float64(d.RawScore) * total),
		Grade:           daily.Grade(GradeLadderV2, float64(d.RawScore)),
	}
}

// V3 soft-caps the base score and replaces the hard chain reset with a
// decaying momentum chain. Its bonuses are continuous.
type V3 struct{}

// Version implements Algorithm.
func (V3) Version() schema.EngineVersion { return schema.EngineV3 }

// ClassWindow implements Algorithm.
func (V3) ClassWindow() int { return 7 }

// Score implements Algorithm.
func (V3) Score(prev *schema.ScoringLogEntry, d schema.DaySignals, streak int) schema.ScoringLogEntry {
	base := SoftCap(d.RawScore)
	chain := momentumChain(prev, d.RawScore)
	momentum := 1 + math.Min(0.08*float64(chain), 0.40) + math.Min(0.03*float64(streak), 0.21)

	bonuses := map[string]float64{
		BonusQuality:    qualityBonus(d),
		BonusEfficiency: efficiencyBonus(d),
		BonusVelocity:   math.Min(0.10, 0.004*float64(max(d.Commits, 0))),
		BonusShip:       math.Min(0.10, 0.10*math.Max(d.ShipRate, 0)),
	}
	sum := sumBonuses(bonuses, BonusQuality, BonusEfficiency, BonusVelocity, BonusShip)
	xp := math.Floor(base * momentum * (1 + sum))
	for k, v := range bonuses {
		bonuses[k] = tokens.Round(v, 4)
	}
	return schema.ScoringLogEntry{
		DaySignals:         d,
		MomentumChain:      chain,
		MomentumMultiplier: tokens.Round(momentum, 3),
		StreakDays:         streak,
		BaseScore:          tokens.Round(base, 1),
		Bonuses:            bonuses,
		TotalMultiplier:    tokens.Round(momentum*(1+sum), 4),
		XP:                 xp,
		Grade:              daily.Grade(GradeLadderV3, xp),
	}
}

// softCapPeak is the raw score where the soft cap curve stops rising.
const softCapPeak = (400/0.15 + 400) / 2

// SoftCap gives diminishing returns on raw scores above 400. The curve
// flattens at its peak, so a bigger day never scores below a smaller one.
func SoftCap(raw int) float64 {
	r := float64(raw)
	if r <= 400 {
		return math.Max(r, 0)
	}
	r = math.Min(r, softCapPeak)
	return r * (1 - 0.15*(r-400)/400)
}

// momentumChain grows on a better day, decays by one on a day within 30% of
// the previous one and resets on a bigger drop.
func momentumChain(prev *schema.ScoringLogEntry, raw int) int {
	if prev == nil {
		return 1
	}
	chain := max(prev.MomentumChain, 1)
	switch r, p := float64(raw), float64(prev.RawScore); {
	case r > p:
		return chain + 1
	case r > 0.7*p:
		return max(chain-1, 1)
	}
	return 1
}

func qualityBonus(d schema.DaySignals) float64 {
	diversity := math.Min(float64(d.UniqueTypes)/8, 1)
	highValue := math.Min(float64(d.HighValuePoints)/float64(max(d.RawScore, 1)), 0.5)
	return 0.08*diversity + 0.07*highValue
}

func efficiencyBonus(d schema.DaySignals) float64 {
	if d.AgentCost <= 0.01 {
		return 0
	}
	ppd := float64(d.RawScore) / d.AgentCost
	return math.Max(0, math.Min(0.15, 0.15*(1-math.Exp(-ppd/80))))
}
