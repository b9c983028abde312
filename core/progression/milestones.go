package progression

import "github.com/huangsam/dailyxp/schema"

// Tally is the running state of a replay, updated before milestone checks.
type Tally struct {
	XP            float64
	Days          int
	Shipped       int
	Words         int
	SGradeDays    int
	Streak        int
	LongestStreak int
	LongestChain  int
	EfficientRun  int // consecutive days with an efficiency bonus above 0.10
}

func (t *Tally) add(e schema.ScoringLogEntry, history []schema.ScoringLogEntry) {
	t.XP += e.XP
	t.Days++
	t.Shipped += e.ShippedCount
	t.Words += e.Words
	if e.Grade == "S" || e.Grade == "S+" {
		t.SGradeDays++
	}
	t.Streak = StreakAt(history, e.DaySignals)
	t.LongestStreak = max(t.LongestStreak, t.Streak)
	t.LongestChain = max(t.LongestChain, e.AscendingChain, e.MomentumChain)
	if e.Bonuses[BonusEfficiency] > 0.10 {
		t.EfficientRun++
	} else {
		t.EfficientRun = 0
	}
}

// MilestoneRule is a one-time unlock predicate.
type MilestoneRule struct {
	ID          string
	Title       string
	Description string
	Check       func(t *Tally, e schema.ScoringLogEntry) bool
}

// unlock stamps the milestone with the triggering day at midnight UTC.
func (r MilestoneRule) unlock(date string) schema.Milestone {
	return schema.Milestone{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		UnlockedAt:  date + "T00:00:00Z",
	}
}

func xpRule(threshold float64, id, title, desc string) MilestoneRule {
	return MilestoneRule{id, title, desc, func(t *Tally, _ schema.ScoringLogEntry) bool { return t.XP >= threshold }}
}

func shippedRule(threshold int, id, title, desc string) MilestoneRule {
	return MilestoneRule{id, title, desc, func(t *Tally, _ schema.ScoringLogEntry) bool { return t.Shipped >= threshold }}
}

func streakRule(threshold int, id, title, desc string) MilestoneRule {
	return MilestoneRule{id, title, desc, func(t *Tally, _ schema.ScoringLogEntry) bool { return t.Streak >= threshold }}
}

func wordsRule(threshold int, id, title, desc string) MilestoneRule {
	return MilestoneRule{id, title, desc, func(t *Tally, _ schema.ScoringLogEntry) bool { return t.Words >= threshold }}
}

func chainRule(threshold int, id, title, desc string) MilestoneRule {
	return MilestoneRule{id, title, desc, func(t *Tally, _ schema.ScoringLogEntry) bool { return t.LongestChain >= threshold }}
}

// commonMilestones are shared by every version.
func commonMilestones() []MilestoneRule {
	return []MilestoneRule{
		{"first_log", "Boot Sequence", "Recorded first daily log",
			func(t *Tally, _ schema.ScoringLogEntry) bool { return t.Days >= 1 }},
		xpRule(100, "first_100xp", "Spark Plug", "Earned 100 XP"),
		xpRule(500, "first_500xp", "Warm Boot", "Earned 500 XP"),
		xpRule(1000, "first_1000xp", "Kilobyte Club", "Earned 1,000 XP"),
		xpRule(2000, "first_2000xp", "Repo Unlocked", "Earned 2,000 XP"),
		xpRule(5000, "first_5000xp", "Pipeline Active", "Earned 5,000 XP"),
		xpRule(10000, "first_10000xp", "Five Digits", "Earned 10,000 XP"),
		shippedRule(10, "shipped_10", "Shipping Container", "Shipped 10+ items across all days"),
		shippedRule(50, "shipped_50", "Cargo Fleet", "Shipped 50+ items across all days"),
		shippedRule(100, "shipped_100", "Assembly Line", "Shipped 100+ items across all days"),
		streakRule(3, "streak_3", "Three-Day March", "Logged activity for 3+ consecutive days"),
		streakRule(7, "streak_7", "Week Warrior", "Logged activity for 7+ consecutive days"),
		wordsRule(50000, "words_50k", "Fifty Thousand Words", "Wrote 50,000+ words across all days"),
		wordsRule(100000, "words_100k", "Novelist", "Wrote 100,000+ words across all days"),
		{"first_s_grade", "S-Rank Day", "Achieved S grade on a daily log",
			func(t *Tally, _ schema.ScoringLogEntry) bool { return t.SGradeDays >= 1 }},
	}
}

var (
	commitMachine = MilestoneRule{"commit_machine", "Commit Machine", "Day with 25+ commits",
		func(_ *Tally, e schema.ScoringLogEntry) bool { return e.Commits >= 25 }}

	efficiencyKing = MilestoneRule{"efficiency_king", "Efficiency King", "Day with >100 pts/$",
		func(_ *Tally, e schema.ScoringLogEntry) bool { return pointsPerDollar(e.DaySignals) > 100 }}

	polymathDay = MilestoneRule{"polymath_day", "Renaissance Day", "Accomplishments in all 3 categories in one day",
		func(_ *Tally, e schema.ScoringLogEntry) bool {
			for _, c := range schema.AllCategories {
				if e.CategoryPoints[c] <= 0 {
					return false
				}
			}
			return true
		}}

	sPlusDay = MilestoneRule{"s_plus_day", "Legendary", "First S+ grade day",
		func(_ *Tally, e schema.ScoringLogEntry) bool { return e.Grade == "S+" }}

	streak14 = streakRule(14, "streak_14", "Two-Week Grind", "14 consecutive days logged")
)

// Milestones implements Algorithm.
func (V1) Milestones() []MilestoneRule {
	return append(commonMilestones(),
		MilestoneRule{"s_grade_streak", "S-Rank Streak", "Achieved S letter grade on 3+ daily logs",
			func(t *Tally, _ schema.ScoringLogEntry) bool { return t.SGradeDays >= 3 }},
		chainRule(3, "ascending_3", "Ascending Chain", "3-day ascending score chain"),
		chainRule(5, "ascending_5", "Unstoppable", "5-day ascending score chain"),
		commitMachine,
		efficiencyKing,
	)
}

// Milestones implements Algorithm.
func (V2) Milestones() []MilestoneRule {
	return append(commonMilestones(),
		chainRule(3, "ascending_3", "Ascending Chain", "3-day ascending score chain"),
		chainRule(5, "ascending_5", "Unstoppable", "5-day ascending score chain"),
		streak14,
		efficiencyKing,
		commitMachine,
		polymathDay,
		sPlusDay,
	)
}

// Milestones implements Algorithm.
func (V3) Milestones() []MilestoneRule {
	return append(commonMilestones(),
		chainRule(3, "momentum_3", "Building Momentum", "3-day ascending momentum chain"),
		chainRule(5, "momentum_5", "Unstoppable", "5+ day momentum chain"),
		streak14,
		MilestoneRule{"quality_day", "Craftsman", "Quality bonus > 0.12 in a single day",
			func(_ *Tally, e schema.ScoringLogEntry) bool { return e.Bonuses[BonusQuality] > 0.12 }},
		MilestoneRule{"efficient_streak", "Lean Machine", "3+ days with efficiency bonus > 0.10",
			func(t *Tally, _ schema.ScoringLogEntry) bool { return t.EfficientRun >= 3 }},
		efficiencyKing,
		commitMachine,
		polymathDay,
		sPlusDay,
	)
}
