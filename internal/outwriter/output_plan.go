package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/dailyxp/core/daily"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// WriteNext outputs pending todos and active drafts.
func WriteNext(next daily.NextUp, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, next)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNextCSV(w, next)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNextTable(w, next, cfg)
		}, "Wrote table")
	}
}

// WriteWeek outputs a multi-day summary.
func WriteWeek(summary daily.WeekSummary, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRows(w,
				[]string{"date", "output_score", "letter_grade", "accomplishments", "shipped_count", "words_today", "commits", "agent_cost", "efficiency_rating"},
				weekRows(summary, fmtFloat, intFmt, false))
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWeekTable(w, summary, fmtFloat, intFmt)
		}, "Wrote table")
	}
}

func writeNextTable(w io.Writer, next daily.NextUp, cfg *contract.Config) error {
	titleWidth := getMaxTableTitleWidth(cfg, 40)
	if len(next.Todos) == 0 {
		if _, err := fmt.Fprintln(w, "🎉 No pending todos"); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(next.Todos))
		for _, t := range next.Todos {
			rows = append(rows, []string{t.ID, string(t.Priority), truncateTitle(t.Task, titleWidth), t.CreatedAt})
		}
		if err := writeTable(w, []string{"ID", "Priority", "Task", "Created"}, rows); err != nil {
			return err
		}
	}
	if len(next.Drafts) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(next.Drafts))
	for _, d := range next.Drafts {
		rows = append(rows, []string{d.Platform, truncateTitle(d.Title, titleWidth), strconv.Itoa(d.Words), d.TargetDate})
	}
	if _, err := fmt.Fprintf(w, "📝 %d drafts in the pipeline\n", len(next.Drafts)); err != nil {
		return err
	}
	return writeTable(w, []string{"Platform", "Title", "Words", "Target"}, rows)
}

func writeNextCSV(w io.Writer, next daily.NextUp) error {
	rows := make([][]string, 0, len(next.Todos)+len(next.Drafts))
	for _, t := range next.Todos {
		rows = append(rows, []string{"todo", t.ID, string(t.Priority), t.Task, "", "", ""})
	}
	for _, d := range next.Drafts {
		rows = append(rows, []string{"draft", "", "", d.Title, d.Platform, strconv.Itoa(d.Words), d.TargetDate})
	}
	return writeCSVRows(w, []string{"kind", "id", "priority", "title", "platform", "words", "target_date"}, rows)
}

func writeWeekTable(w io.Writer, summary daily.WeekSummary, fmtFloat func(float64) string, intFmt string) error {
	if len(summary.Days) == 0 {
		_, err := fmt.Fprintln(w, "No daily records in this window")
		return err
	}
	headers := []string{"Date", "Score", "Grade", "Items", "Shipped", "Words", "Commits", "Cost", "Efficiency"}
	if err := writeTable(w, headers, weekRows(summary, fmtFloat, intFmt, true)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d days, total score %d, average %s (%s), best day %s\nShipped %d, words %d, agent cost %s\n",
		len(summary.Days), summary.TotalScore, fmtFloat(summary.AvgScore), contract.GetColorGrade(summary.Grade),
		summary.BestDay, summary.Shipped, summary.TotalWords, formatMoney(summary.TotalCost))
	return err
}

func weekRows(summary daily.WeekSummary, fmtFloat func(float64) string, intFmt string, colored bool) [][]string {
	rows := make([][]string, 0, len(summary.Days))
	for _, d := range summary.Days {
		grade := d.Grade
		if colored {
			grade = contract.GetColorGrade(grade)
		}
		rows = append(rows, []string{
			d.Date,
			fmt.Sprintf(intFmt, d.Score),
			grade,
			fmt.Sprintf(intFmt, d.Items),
			fmt.Sprintf(intFmt, d.Shipped),
			fmt.Sprintf(intFmt, d.Words),
			fmt.Sprintf(intFmt, d.Commits),
			fmtFloat(d.Cost),
			fmtFloat(d.Efficiency),
		})
	}
	return rows
}
