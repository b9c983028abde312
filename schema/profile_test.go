package schema

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScoringLogEntryVersionKeys tests that xp and grade land under version-specific keys.
func TestScoringLogEntryVersionKeys(t *testing.T) {
	entry := ScoringLogEntry{
		DaySignals:      DaySignals{Date: "2026-02-11", RawScore: 55},
		AscendingChain:  2,
		ChainMultiplier: 1.1,
		Bonuses:         map[string]float64{},
		TotalMultiplier: 1.1,
		Version:         EngineV1,
		XP:              60.5,
		Grade:           "A+",
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 60.5, raw["v1_xp"])
	assert.Equal(t, "A+", raw["v1_grade"])
	assert.NotContains(t, raw, "XP")
	assert.NotContains(t, raw, "v2_xp")

	var back ScoringLogEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, EngineV1, back.Version)
	assert.Equal(t, 60.5, back.XP)
	assert.Equal(t, "A+", back.Grade)
	assert.Equal(t, 2, back.AscendingChain)
	assert.Equal(t, "2026-02-11", back.Date)
}

// TestScoringLogEntryWithoutVersion tests that an unversioned entry marshals plainly.
func TestScoringLogEntryWithoutVersion(t *testing.T) {
	data, err := json.Marshal(ScoringLogEntry{DaySignals: DaySignals{Date: "2026-02-11"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "_xp")
}

// TestProfileHelpers tests LastLogDate and HasMilestone.
func TestProfileHelpers(t *testing.T) {
	var p Profile
	assert.Equal(t, "", p.LastLogDate())
	assert.False(t, p.HasMilestone("first_log"))

	p.Meta.ScoringLog = []ScoringLogEntry{{DaySignals: DaySignals{Date: "2026-02-10"}}, {DaySignals: DaySignals{Date: "2026-02-11"}}}
	p.Milestones = []Milestone{{ID: "first_log"}}
	assert.Equal(t, "2026-02-11", p.LastLogDate())
	assert.True(t, p.HasMilestone("first_log"))
}

// TestPriorityRank tests that high priorities sort first.
func TestPriorityRank(t *testing.T) {
	assert.Less(t, HighPriority.Rank(), MediumPriority.Rank())
	assert.Less(t, MediumPriority.Rank(), LowPriority.Rank())
	assert.True(t, TokenSourceClaudeCode.IsAutoToken())
	assert.True(t, TokenSourceEstimate.IsAutoToken())
	assert.False(t, TokenSourceManual.IsAutoToken())
}
