// Package daily merges a fresh scan into a day's record and scores it.
package daily

import (
	"strings"
)

// Points is the fixed value table for accomplishment types.
var Points = map[string]int{
	"monorepo_build":    50,
	"system_engine":     50,
	"feature_system":    30,
	"feature_script":    30,
	"landing_page":      25,
	"complex_script":    25,
	"code_infra":        15,
	"final":             10,
	"partner_onboard":   8,
	"client_onboard":    8,
	"manual":            5,
	"skill_updated":     5,
	"skill_created":     5,
	"workflow_updated":  5,
	"lead_magnet":       5,
	"partner_prompt":    5,
	"partner_research":  5,
	"partner_workflow":  5,
	"client_prompt":     5,
	"client_research":   5,
	"client_workflow":   5,
	"website_page":      5,
	"website_component": 5,
	"website_lib":       3,
	"website_route":     3,
	"cursor_rule":       3,
	"partner_resource":  2,
	"client_resource":   2,
	"website_style":     2,
	"draft":             2,
	"script":            2,
	"website_config":    1,
}

// GradeStep is one rung of a grade ladder.
type GradeStep struct {
	Threshold float64
	Grade     string
}

// GradeLadder is the daily ladder on output_score, highest first.
// S+ is the legendary band far above S.
var GradeLadder = []GradeStep{
	{500, "S+"},
	{200, "S"},
	{50, "A+"},
	{30, "A"},
	{15, "B"},
	{5, "C"},
	{0, "D"},
}

// PointsFor returns the value of a type. Overrides win over the table, then
// types containing "final" or "draft" fall back to those rows.
func PointsFor(typ string, overrides map[string]int) int {
	typ = strings.ToLower(typ)
	if pts, ok := overrides[typ]; ok {
		return max(pts, 0)
	}
	if pts, ok := Points[typ]; ok {
		return pts
	}
	switch {
	case strings.Contains(typ, "final"):
		return PointsFor("final", overrides)
	case strings.Contains(typ, "draft"):
		return PointsFor("draft", overrides)
	}
	return 0
}

// IsShipped reports whether a type is production output rather than a draft.
func IsShipped(typ string) bool {
	return !strings.Contains(typ, "draft")
}

// Grade returns the grade of a score on a ladder. A score exactly at a
// threshold gets that grade; anything below the lowest rung gets the last one.
func Grade(ladder []GradeStep, score float64) string {
	for _, step := range ladder {
		if score >= step.Threshold {
			return step.Grade
		}
	}
	return ladder[len(ladder)-1].Grade
}

// LetterGrade returns the daily grade of an output score.
func LetterGrade(score int) string {
	return Grade(GradeLadder, float64(score))
}
