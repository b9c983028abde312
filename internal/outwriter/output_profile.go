package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// WriteProfiles outputs progression profiles.
func WriteProfiles(profiles []schema.Profile, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, profiles)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProfileCSV(w, profiles, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeProfileTable(w, profiles, fmtFloat); err != nil {
				return err
			}
			return writeMilestones(w, profiles)
		}, "Wrote table")
	}
}

// WritePricing outputs the per-model pricing table in dollars per million tokens.
func WritePricing(rows []schema.PricingRow, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRows(w, []string{"model", "input", "output", "cache_read", "cache_write", "default"}, pricingRows(rows, false))
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeTable(w, []string{"Model", "Input", "Output", "Cache Read", "Cache Write", "Default"}, pricingRows(rows, true)); err != nil {
				return err
			}
			_, err := fmt.Fprintln(w, "Rates are USD per million tokens")
			return err
		}, "Wrote table")
	}
}

func writeProfileTable(w io.Writer, profiles []schema.Profile, fmtFloat func(float64) string) error {
	if len(profiles) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			string(p.Meta.EngineVersion),
			p.Name,
			strconv.Itoa(p.Level),
			p.Title,
			fmtFloat(p.XPTotal),
			fmtFloat(p.XPNextLevel),
			p.Class,
			strconv.Itoa(p.Meta.StreakDays),
			strconv.Itoa(p.Meta.CurrentChain),
			strconv.Itoa(p.Meta.DaysLogged),
		})
	}
	return writeTable(w, []string{"Engine", "Name", "Level", "Title", "XP", "Next", "Class", "Streak", "Chain", "Days"}, rows)
}

func writeProfileCSV(w io.Writer, profiles []schema.Profile, fmtFloat func(float64) string) error {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			string(p.Meta.EngineVersion),
			p.Name,
			strconv.Itoa(p.Level),
			p.Title,
			fmtFloat(p.XPTotal),
			fmtFloat(p.XPNextLevel),
			p.Class,
			strconv.Itoa(p.AvatarTier),
			strconv.Itoa(p.Meta.StreakDays),
			strconv.Itoa(p.Meta.LongestStreak),
			strconv.Itoa(p.Meta.CurrentChain),
			strconv.Itoa(p.Meta.LongestChain),
			strconv.Itoa(p.Meta.DaysLogged),
			strconv.Itoa(len(p.Milestones)),
			p.UpdatedAt,
		})
	}
	header := []string{
		"engine_version", "name", "level", "title", "xp_total", "xp_next_level", "class", "avatar_tier",
		"streak_days", "longest_streak", "current_chain", "longest_chain", "days_logged", "milestones", "updated_at",
	}
	return writeCSVRows(w, header, rows)
}

func writeMilestones(w io.Writer, profiles []schema.Profile) error {
	for _, p := range profiles {
		for _, m := range p.Milestones {
			if _, err := fmt.Fprintf(w, "🏅 %s %s: %s (%s)\n", p.Meta.EngineVersion, m.Title, m.Description, m.UnlockedAt); err != nil {
				return err
			}
		}
	}
	return nil
}

func pricingRows(rows []schema.PricingRow, marker bool) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		def := strconv.FormatBool(r.Default)
		if marker {
			def = ""
			if r.Default {
				def = "*"
			}
		}
		out = append(out, []string{
			r.Model,
			strconv.FormatFloat(r.Input, 'f', -1, 64),
			strconv.FormatFloat(r.Output, 'f', -1, 64),
			strconv.FormatFloat(r.CacheRead, 'f', -1, 64),
			strconv.FormatFloat(r.CacheWrite, 'f', -1, 64),
			def,
		})
	}
	return out
}
