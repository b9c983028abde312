// Package progression folds daily scores into long-lived RPG profiles.
//
// Each engine version is an Algorithm that scores one day from the previous
// scoring log entry. Replay turns a scoring log into a profile and Advance
// appends new days to an existing one without touching frozen entries.
package progression

import (
	"sort"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// DefaultName is the profile name used when none is configured.
const DefaultName = contract.DefaultName

// highValueFloor is the value_score at which an accomplishment counts as high value.
const highValueFloor = 15

// Algorithm is one progression engine version.
type Algorithm interface {
	// Version returns the engine version tag.
	Version() schema.EngineVersion

	// Score folds a day into a scoring log entry. prev is nil on the first day
	// and streak is the activity streak including this day.
	Score(prev *schema.ScoringLogEntry, day schema.DaySignals, streak int) schema.ScoringLogEntry

	// ClassWindow is the number of trailing entries the class is computed over.
	// Zero means the full history.
	ClassWindow() int

	// Milestones is the unlock table evaluated after every day.
	Milestones() []MilestoneRule
}

// For returns the algorithm of a version.
func For(v schema.EngineVersion) (Algorithm, bool) {
	switch v {
	case schema.EngineV1:
		return V1{}, true
	case schema.EngineV2:
		return V2{}, true
	case schema.EngineV3:
		return V3{}, true
	}
	return nil, false
}

// All returns every algorithm in replay order.
func All() []Algorithm {
	out := make([]Algorithm, 0, len(schema.AllEngineVersions))
	for _, v := range schema.AllEngineVersions {
		alg, _ := For(v)
		out = append(out, alg)
	}
	return out
}

// SignalsFrom extracts the progression inputs from a scored daily record.
func SignalsFrom(rec schema.DailyRecord) schema.DaySignals {
	types := make(map[string]struct{})
	categories := map[schema.Category]int{}
	highValue := 0
	for _, a := range rec.Accomplishments {
		types[a.Type] = struct{}{}
		if _, ok := schema.ValidCategories[a.Category]; ok {
			categories[a.Category] += a.ValueScore
		}
		if a.ValueScore >= highValueFloor {
			highValue += a.ValueScore
		}
	}
	return schema.DaySignals{
		Date:            rec.Date,
		RawScore:        rec.Stats.OutputScore,
		Commits:         rec.GitSummary.CommitsToday,
		ShipRate:        rec.Stats.ShipRate,
		ShippedCount:    rec.Stats.ShippedCount,
		AgentCost:       rec.Stats.AgentCost,
		Words:           rec.Stats.WordsToday,
		UniqueTypes:     len(types),
		HighValuePoints: highValue,
		CategoryPoints:  categories,
	}
}

// Score folds a full history of days into a scoring log from scratch.
func Score(alg Algorithm, days []schema.DaySignals) []schema.ScoringLogEntry {
	days = sortedDays(days)
	entries := make([]schema.ScoringLogEntry, 0, len(days))
	for _, d := range days {
		entries = appendDay(alg, entries, d)
	}
	return entries
}

// Rebuild scores every day from scratch and replays the result.
func Rebuild(alg Algorithm, days []schema.DaySignals) schema.Profile {
	return Replay(alg, Score(alg, days))
}

// Replay folds a scoring log into a profile. It is pure: the same log always
// yields the same profile, milestones included.
func Replay(alg Algorithm, entries []schema.ScoringLogEntry) schema.Profile {
	entries = normalizeLog(alg, entries)
	rules := alg.Milestones()
	unlocked := map[string]struct{}{}
	milestones := []schema.Milestone{}

	var t Tally
	for i, e := range entries {
		t.add(e, entries[:i])
		for _, r := range rules {
			if _, ok := unlocked[r.ID]; ok {
				continue
			}
			if r.Check(&t, e) {
				unlocked[r.ID] = struct{}{}
				milestones = append(milestones, r.unlock(e.Date))
			}
		}
	}

	p := schema.Profile{
		Name:       DefaultName,
		XPTotal:    t.XP,
		Milestones: milestones,
		Meta: schema.ProfileMeta{
			EngineVersion: alg.Version(),
			ScoringLog:    entries,
			LongestChain:  t.LongestChain,
			StreakDays:    t.Streak,
			LongestStreak: t.LongestStreak,
			ClassWindow:   alg.ClassWindow(),
			DaysLogged:    t.Days,
			TotalWords:    t.Words,
			TotalShipped:  t.Shipped,
		},
	}
	if n := len(entries); n > 0 {
		last := entries[n-1]
		p.Meta.CurrentChain = max(last.AscendingChain, last.MomentumChain)
		p.Meta.ChainMultiplier = last.ChainMultiplier
		p.Meta.MomentumMultiplier = last.MomentumMultiplier
	}
	applyLevel(&p)
	p.Class, p.Meta.ClassBreakdown = ClassFor(windowOf(entries, alg.ClassWindow()))
	return p
}

// Advance appends days to a prior profile. Entries before the prior profile's
// last date are frozen and reused verbatim; the last entry stays open and is
// re-derived when its day is passed again. Days before the last date are
// never backfilled. Milestones already in the prior profile are kept as is
// and xp_total never decreases.
func Advance(alg Algorithm, prior schema.Profile, days []schema.DaySignals) schema.Profile {
	entries := normalizeLog(alg, prior.Meta.ScoringLog)
	open := prior.LastLogDate()
	for _, d := range sortedDays(days) {
		switch {
		case open != "" && d.Date < open:
			contract.Logger().Warn().
				Str("version", string(alg.Version())).
				Str("date", d.Date).
				Str("last", open).
				Msg("Refusing to backfill scoring log")
			continue
		case d.Date == open:
			entries = appendDay(alg, entries[:len(entries)-1], d)
		default:
			entries = appendDay(alg, entries, d)
		}
		open = d.Date
	}

	p := Replay(alg, entries)
	if prior.Name != "" {
		p.Name = prior.Name
	}
	p.UpdatedAt = prior.UpdatedAt
	p.Milestones = mergeMilestones(prior.Milestones, p.Milestones)
	if prior.XPTotal > p.XPTotal {
		p.XPTotal = prior.XPTotal
		applyLevel(&p)
	}
	return p
}

// appendDay scores a day against the tail of the log and appends it.
func appendDay(alg Algorithm, entries []schema.ScoringLogEntry, d schema.DaySignals) []schema.ScoringLogEntry {
	var prev *schema.ScoringLogEntry
	if n := len(entries); n > 0 {
		prev = &entries[n-1]
	}
	streak := StreakAt(entries, d)
	e := alg.Score(prev, d, streak)
	e.Version = alg.Version()
	if e.Bonuses == nil {
		e.Bonuses = map[string]float64{}
	}
	return append(entries, e)
}

// StreakAt returns the activity streak for a day that follows the log.
// A day is active when its raw score is positive; an inactive day breaks
// the streak.
func StreakAt(entries []schema.ScoringLogEntry, d schema.DaySignals) int {
	if d.RawScore <= 0 {
		return 0
	}
	streak := 0
	next := d.Date
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.RawScore <= 0 || !isDayBefore(e.Date, next) {
			break
		}
		streak++
		next = e.Date
	}
	return streak + 1
}

// isDayBefore reports whether a is the calendar day right before b.
func isDayBefore(a, b string) bool {
	ta, errA := time.Parse(schema.DateLayout, a)
	tb, errB := time.Parse(schema.DateLayout, b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.AddDate(0, 0, 1).Equal(tb)
}

// sortedDays returns the days ordered by date with duplicates collapsed to the last one.
func sortedDays(days []schema.DaySignals) []schema.DaySignals {
	byDate := make(map[string]schema.DaySignals, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}
	out := make([]schema.DaySignals, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// normalizeLog copies the log and stamps the version on every entry.
func normalizeLog(alg Algorithm, entries []schema.ScoringLogEntry) []schema.ScoringLogEntry {
	out := make([]schema.ScoringLogEntry, len(entries))
	for i, e := range entries {
		e.Version = alg.Version()
		if e.Bonuses == nil {
			e.Bonuses = map[string]float64{}
		}
		out[i] = e
	}
	return out
}

// windowOf returns the trailing n entries, or all of them when n is zero.
func windowOf(entries []schema.ScoringLogEntry, n int) []schema.ScoringLogEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// mergeMilestones keeps the prior milestones verbatim and appends new ids.
func mergeMilestones(prior, fresh []schema.Milestone) []schema.Milestone {
	out := make([]schema.Milestone, 0, len(prior)+len(fresh))
	seen := make(map[string]struct{}, len(prior))
	for _, m := range prior {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	for _, m := range fresh {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
