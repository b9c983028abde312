package schema

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Milestone is a one-time unlock. It is immutable once written to a profile.
type Milestone struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UnlockedAt  string `json:"unlocked_at"`
}

// DaySignals are the per-day inputs shared by every progression engine.
type DaySignals struct {
	Date            string           `json:"date"`
	RawScore        int              `json:"raw_score"`
	Commits         int              `json:"commits"`
	ShipRate        float64          `json:"ship_rate"`
	ShippedCount    int              `json:"shipped_count"`
	AgentCost       float64          `json:"agent_cost"`
	Words           int              `json:"words"`
	UniqueTypes     int              `json:"unique_types"`
	HighValuePoints int              `json:"high_value_points"`
	CategoryPoints  map[Category]int `json:"category_points"`
}

// ScoringLogEntry is one day as folded by a specific engine version.
// XP and Grade are written under version-specific keys (v1_xp, v1_grade, ...).
type ScoringLogEntry struct {
	DaySignals

	AscendingChain     int                `json:"ascending_chain,omitempty"`
	ChainMultiplier    float64            `json:"chain_multiplier,omitempty"`
	MomentumChain      int                `json:"momentum_chain,omitempty"`
	MomentumMultiplier float64            `json:"momentum_multiplier,omitempty"`
	StreakDays         int                `json:"streak_days,omitempty"`
	BaseScore          float64            `json:"base_score,omitempty"`
	Bonuses            map[string]float64 `json:"bonuses"`
	TotalMultiplier    float64            `json:"total_multiplier"`

	Version EngineVersion `json:"-"`
	XP      float64       `json:"-"`
	Grade   string        `json:"-"`
}

// MarshalJSON writes the entry with its version-specific xp and grade keys.
func (e ScoringLogEntry) MarshalJSON() ([]byte, error) {
	type alias ScoringLogEntry
	base, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	if e.Version == "" {
		return base, nil
	}
	grade, err := json.Marshal(e.Grade)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	fmt.Fprintf(&buf, `,"%s_xp":%s,"%s_grade":%s}`,
		e.Version, strconv.FormatFloat(e.XP, 'f', -1, 64), e.Version, grade)
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an entry and detects its version from the xp key.
func (e *ScoringLogEntry) UnmarshalJSON(data []byte) error {
	type alias ScoringLogEntry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, v := range AllEngineVersions {
		xp, ok := raw[string(v)+"_xp"]
		if !ok {
			continue
		}
		a.Version = v
		if err := json.Unmarshal(xp, &a.XP); err != nil {
			return fmt.Errorf("invalid %s_xp: %w", v, err)
		}
		if g, ok := raw[string(v)+"_grade"]; ok {
			if err := json.Unmarshal(g, &a.Grade); err != nil {
				return fmt.Errorf("invalid %s_grade: %w", v, err)
			}
		}
		break
	}
	*e = ScoringLogEntry(a)
	return nil
}

// ProfileMeta is the engine-specific state carried by a profile.
type ProfileMeta struct {
	EngineVersion      EngineVersion        `json:"engine_version"`
	ScoringLog         []ScoringLogEntry    `json:"scoring_log"`
	CurrentChain       int                  `json:"current_chain"`
	LongestChain       int                  `json:"longest_chain"`
	ChainMultiplier    float64              `json:"chain_multiplier,omitempty"`
	MomentumMultiplier float64              `json:"momentum_multiplier,omitempty"`
	StreakDays         int                  `json:"streak_days"`
	LongestStreak      int                  `json:"longest_streak"`
	ClassBreakdown     map[Category]float64 `json:"class_breakdown"`
	ClassWindow        int                  `json:"class_window"` // 0 means full history
	DaysLogged         int                  `json:"days_logged"`
	TotalWords         int                  `json:"total_words"`
	TotalShipped       int                  `json:"total_shipped"`
}

// Profile is the long-lived RPG state of one engine version.
type Profile struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Level       int         `json:"level"`
	XPTotal     float64     `json:"xp_total"`
	XPNextLevel float64     `json:"xp_next_level"`
	Class       string      `json:"class"`
	AvatarTier  int         `json:"avatar_tier"`
	Milestones  []Milestone `json:"milestones"`
	UpdatedAt   string      `json:"updated_at"`
	Meta        ProfileMeta `json:"meta"`
}

// LastLogDate returns the date of the newest scoring log entry, or "".
func (p Profile) LastLogDate() string {
	if n := len(p.Meta.ScoringLog); n > 0 {
		return p.Meta.ScoringLog[n-1].Date
	}
	return ""
}

// HasMilestone reports whether the milestone id is already unlocked.
func (p Profile) HasMilestone(id string) bool {
	for _, m := range p.Milestones {
		if m.ID == id {
			return true
		}
	}
	return false
}
