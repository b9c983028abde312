package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// WriteDay outputs a scanned day, dispatching based on the output format configured.
func WriteDay(outcome schema.DayOutcome, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, outcome)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDayCSV(w, outcome.Record)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeDayTable(w, outcome.Record, cfg); err != nil {
				return err
			}
			if err := writeDayStats(w, outcome.Record, fmtFloat); err != nil {
				return err
			}
			if err := writeProfileTable(w, outcome.Profiles, fmtFloat); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Scan completed in %v. History backend: %s\n", duration, cfg.HistoryBackend)
			return err
		}, "Wrote table")
	}
}

// WriteChange outputs the result of a manual entry: what changed and the day it changed.
func WriteChange(action string, item any, outcome schema.DayOutcome, cfg *contract.Config) error {
	rec := outcome.Record
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, changeJSON{
				Action:   action,
				Date:     rec.Date,
				Item:     item,
				Stats:    rec.Stats,
				Profiles: outcome.Profiles,
			})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRows(w,
				[]string{"action", "date", "item", "output_score", "letter_grade"},
				[][]string{{action, rec.Date, describeItem(item), strconv.Itoa(rec.Stats.OutputScore), rec.Stats.LetterGrade}})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChangeText(w, action, item, outcome)
		}, "Wrote text")
	}
}

// WriteRescore outputs the recomputed days and the resulting profiles.
func WriteRescore(outcome schema.RescoreOutcome, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, outcome)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProfileCSV(w, outcome.Profiles, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			mode := "advanced"
			if outcome.Rebuilt {
				mode = "rebuilt"
			}
			if _, err := fmt.Fprintf(w, "♻️  Recomputed %d daily records, profiles %s\n", len(outcome.Dates), mode); err != nil {
				return err
			}
			if err := writeProfileTable(w, outcome.Profiles, fmtFloat); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Rescore completed in %v. History backend: %s\n", duration, cfg.HistoryBackend)
			return err
		}, "Wrote table")
	}
}

type changeJSON struct {
	Action   string           `json:"action"`
	Date     string           `json:"date"`
	Item     any              `json:"item"`
	Stats    schema.Stats     `json:"stats"`
	Profiles []schema.Profile `json:"profiles"`
}

// writeDayTable lists the accomplishments of a record.
func writeDayTable(w io.Writer, rec schema.DailyRecord, cfg *contract.Config) error {
	if len(rec.Accomplishments) == 0 {
		_, err := fmt.Fprintf(w, "No accomplishments recorded for %s\n", rec.Date)
		return err
	}
	titleWidth := getMaxTableTitleWidth(cfg, 60)
	rows := make([][]string, 0, len(rec.Accomplishments))
	for i, a := range rec.Accomplishments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Timestamp,
			string(a.Category),
			a.Type,
			truncateTitle(a.Title, titleWidth),
			strconv.Itoa(a.Words),
			strconv.Itoa(a.ValueScore),
			shippedMark(a.Shipped),
		})
	}
	return writeTable(w, []string{"#", "Time", "Category", "Type", "Title", "Words", "Points", "Shipped"}, rows)
}

// writeDayStats prints the derived stats of a record below its table.
func writeDayStats(w io.Writer, rec schema.DailyRecord, fmtFloat func(float64) string) error {
	s := rec.Stats
	lines := []string{
		fmt.Sprintf("🏆 Score: %d (%s)  Shipped: %d  Drafts: %d  Words: %d",
			s.OutputScore, contract.GetColorGrade(s.LetterGrade), s.ShippedCount, s.DraftCount, s.WordsToday),
		fmt.Sprintf("🤖 Agent: %d tokens, %s  Efficiency: %s pts/$",
			s.TotalTokens, formatMoney(s.AgentCost), fmtFloat(s.EfficiencyRating)),
		fmt.Sprintf("💼 Dev equivalent: %s  Savings: %s  ROI: %sx",
			formatMoney(s.DevEquivalent.Total), formatMoney(s.CostSavings), fmtFloat(s.ROIMultiplier)),
	}
	if g := rec.GitSummary; g.CommitsToday > 0 {
		lines = append(lines, fmt.Sprintf("🌿 Git: %d commits, +%d/-%d lines", g.CommitsToday, g.LinesAdded, g.LinesRemoved))
	}
	if s.FirstActivity != "" {
		lines = append(lines, fmt.Sprintf("⏱️  Active: %s → %s", s.FirstActivity, s.LastActivity))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeDayCSV writes one row per accomplishment.
func writeDayCSV(w io.Writer, rec schema.DailyRecord) error {
	rows := make([][]string, 0, len(rec.Accomplishments))
	for _, a := range rec.Accomplishments {
		rows = append(rows, []string{
			rec.Date,
			a.ID,
			a.Timestamp,
			string(a.Category),
			a.Type,
			a.Title,
			a.Path,
			a.Platform,
			string(a.Source),
			strconv.Itoa(a.Words),
			strconv.Itoa(a.ValueScore),
			strconv.FormatBool(a.Shipped),
		})
	}
	header := []string{"date", "id", "timestamp", "category", "type", "title", "path", "platform", "source", "words", "value_score", "shipped"}
	return writeCSVRows(w, header, rows)
}

// writeChangeText prints a confirmation line and the day score afterwards.
func writeChangeText(w io.Writer, action string, item any, outcome schema.DayOutcome) error {
	s := outcome.Record.Stats
	if _, err := fmt.Fprintf(w, "✅ %s: %s\n", action, describeItem(item)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "📈 %s score: %d (%s)\n", outcome.Record.Date, s.OutputScore, contract.GetColorGrade(s.LetterGrade)); err != nil {
		return err
	}
	for _, p := range outcome.Profiles {
		if _, err := fmt.Fprintf(w, "   %s: Lv %d %s (%.0f XP)\n", p.Meta.EngineVersion, p.Level, p.Title, p.XPTotal); err != nil {
			return err
		}
	}
	return nil
}

// describeItem renders a one-line summary of a changed item.
func describeItem(item any) string {
	switch v := item.(type) {
	case schema.Accomplishment:
		return fmt.Sprintf("[%s] %s (%d pts)", v.Type, v.Title, v.ValueScore)
	case schema.TodoItem:
		return fmt.Sprintf("%s %s (%s, %s)", v.ID, v.Task, v.Priority, v.Status)
	case schema.TokenUsageEntry:
		return fmt.Sprintf("%s %d tokens (%s)", v.Model, v.TotalTokens(), formatMoney(v.Cost))
	default:
		return fmt.Sprint(v)
	}
}

// truncateTitle shortens a title to maxWidth runes with a trailing ellipsis.
func truncateTitle(title string, maxWidth int) string {
	runes := []rune(title)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return title
}

func shippedMark(shipped bool) string {
	if shipped {
		return "✓"
	}
	return ""
}
