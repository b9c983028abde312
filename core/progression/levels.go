package progression

import (
	"math"

	"github.com/huangsam/dailyxp/schema"
)

// LevelRow is one rung of the title table.
type LevelRow struct {
	Level      int
	Title      string
	XPRequired float64
	AvatarTier int
}

// Levels is the title table shared by every engine version, lowest first.
var Levels = []LevelRow{
	{1, "Terminal Initiate", 0, 1},
	{5, "Prompt Apprentice", 500, 1},
	{10, "Repo Architect", 2000, 2},
	{15, "Pipeline Runner", 5000, 2},
	{20, "Context Weaver", 10000, 3},
	{25, "Skill Forger", 18000, 3},
	{30, "Voice Alchemist", 30000, 4},
	{35, "System Sovereign", 50000, 4},
	{40, "OS Architect", 80000, 5},
	{45, "Cursor Slayer", 120000, 5},
	{50, "Grand Master Cursor Slayer", 200000, 6},
}

// Class names.
const (
	ClassBuilder    = "Builder"
	ClassScribe     = "Scribe"
	ClassStrategist = "Strategist"
	ClassAlchemist  = "Alchemist"
	ClassPolymath   = "Polymath"
)

var categoryClass = map[schema.Category]string{
	schema.BuilderCategory:    ClassBuilder,
	schema.ScribeCategory:     ClassScribe,
	schema.StrategistCategory: ClassStrategist,
}

// LevelFor returns the row for an XP total and the XP needed for the next row.
// Totals below zero resolve to the first row. At the top row the next
// requirement is the total itself, or 1 when the total is zero.
func LevelFor(xp float64) (LevelRow, float64) {
	idx := 0
	for i, row := range Levels {
		if xp >= row.XPRequired {
			idx = i
		}
	}
	if idx+1 < len(Levels) {
		return Levels[idx], Levels[idx+1].XPRequired
	}
	return Levels[idx], math.Max(xp, 1)
}

func applyLevel(p *schema.Profile) {
	row, next := LevelFor(p.XPTotal)
	p.Level = row.Level
	p.Title = row.Title
	p.AvatarTier = row.AvatarTier
	p.XPNextLevel = next
}

// ClassFor tallies category points over entries and names the class.
// All three categories at 20% or more is Polymath; two at 30% or more is
// Alchemist; otherwise the dominant category wins, ties going to the
// earlier category in builder, scribe, strategist order.
func ClassFor(entries []schema.ScoringLogEntry) (string, map[schema.Category]float64) {
	points := map[schema.Category]int{}
	total := 0
	for _, e := range entries {
		for _, c := range schema.AllCategories {
			points[c] += e.CategoryPoints[c]
			total += e.CategoryPoints[c]
		}
	}
	if total <= 0 {
		return ClassBuilder, map[schema.Category]float64{
			schema.BuilderCategory:    1,
			schema.ScribeCategory:     0,
			schema.StrategistCategory: 0,
		}
	}

	fracs := make(map[schema.Category]float64, len(schema.AllCategories))
	all20, over30 := true, 0
	for _, c := range schema.AllCategories {
		f := math.Round(float64(points[c])/float64(total)*100) / 100
		fracs[c] = f
		if f < 0.20 {
			all20 = false
		}
		if f >= 0.30 {
			over30++
		}
	}
	switch {
	case all20:
		return ClassPolymath, fracs
	case over30 >= 2:
		return ClassAlchemist, fracs
	}

	dominant := schema.AllCategories[0]
	for _, c := range schema.AllCategories[1:] {
		if fracs[c] > fracs[dominant] {
			dominant = c
		}
	}
	return categoryClass[dominant], fracs
}
