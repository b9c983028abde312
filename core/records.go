package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/dailyxp/core/activity"
	"github.com/huangsam/dailyxp/core/daily"
	"github.com/huangsam/dailyxp/core/tokens"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// GetScanResults observes the configured day, merges it into the stored
// record, persists it and advances every progression engine.
func GetScanResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.StoreManager) (schema.DayOutcome, error) {
	now := time.Now()
	ctx = beginRun(ctx, mgr, "scan", cfg, now)
	defer endRun(ctx, mgr)

	scan, err := activity.Scan(ctx, cfg, client)
	if err != nil {
		return schema.DayOutcome{}, fmt.Errorf("activity scan failed: %w", err)
	}
	usage, err := tokens.Scan(ctx, cfg)
	if err != nil {
		return schema.DayOutcome{}, fmt.Errorf("token scan failed: %w", err)
	}
	scan.TokenUsage = usage

	records := mgr.GetRecordStore()
	date := cfg.DateString()
	in := daily.MergeInput{Date: date, Scan: *scan, Weights: cfg.Weights, Now: now}
	prior, ok, err := records.Load(date)
	if err != nil {
		return schema.DayOutcome{}, err
	}
	if ok {
		in.Prior = &prior
	} else if in.Carry, err = carryTodos(records, date); err != nil {
		return schema.DayOutcome{}, err
	}

	rec := daily.Merge(in)
	if err := records.Save(rec); err != nil {
		return schema.DayOutcome{}, fmt.Errorf("failed to save record: %w", err)
	}
	contract.Logger().Info().
		Str("date", date).
		Int("accomplishments", len(rec.Accomplishments)).
		Int("score", rec.Stats.OutputScore).
		Msg("Saved daily record")

	profiles, err := syncProfiles(mgr, cfg, now)
	if err != nil {
		return schema.DayOutcome{}, err
	}
	recordDayScores(ctx, mgr, date, profiles, now)
	return schema.DayOutcome{Record: rec, Profiles: profiles}, nil
}

// AddAccomplishment appends a manual accomplishment to the configured day.
func AddAccomplishment(cfg *contract.Config, mgr contract.StoreManager, entry daily.ManualEntry) (schema.Accomplishment, schema.DayOutcome, error) {
	var acc schema.Accomplishment
	out, err := updateDay(cfg, mgr, func(rec schema.DailyRecord, now time.Time) (schema.DailyRecord, error) {
		var err error
		if acc, err = daily.NewAccomplishment(entry, cfg.Weights, now); err != nil {
			return rec, err
		}
		return daily.AddAccomplishment(rec, acc, cfg.Weights, now), nil
	})
	return acc, out, err
}

// AddTokens appends a manual token usage entry to the configured day.
func AddTokens(cfg *contract.Config, mgr contract.StoreManager, in daily.ManualTokens) (schema.TokenUsageEntry, schema.DayOutcome, error) {
	var entry schema.TokenUsageEntry
	out, err := updateDay(cfg, mgr, func(rec schema.DailyRecord, now time.Time) (schema.DailyRecord, error) {
		var err error
		rec, entry, err = daily.AddTokens(rec, in, cfg, now)
		return rec, err
	})
	return entry, out, err
}

// AddTodo appends a todo to the configured day.
func AddTodo(cfg *contract.Config, mgr contract.StoreManager, task string, priority schema.Priority) (schema.TodoItem, schema.DayOutcome, error) {
	var todo schema.TodoItem
	out, err := updateDay(cfg, mgr, func(rec schema.DailyRecord, now time.Time) (schema.DailyRecord, error) {
		var err error
		rec, todo, err = daily.AddTodo(rec, task, priority, cfg.Weights, now)
		return rec, err
	})
	return todo, out, err
}

// CompleteTodo marks a todo of the configured day as done.
func CompleteTodo(cfg *contract.Config, mgr contract.StoreManager, id string) (schema.TodoItem, schema.DayOutcome, error) {
	var todo schema.TodoItem
	out, err := updateDay(cfg, mgr, func(rec schema.DailyRecord, now time.Time) (schema.DailyRecord, error) {
		var err error
		rec, todo, err = daily.CompleteTodo(rec, id, cfg.Weights, now)
		return rec, err
	})
	return todo, out, err
}

// GetNextResults lists pending todos and active drafts of the configured day.
// Nothing is written.
func GetNextResults(cfg *contract.Config, mgr contract.StoreManager) (daily.NextUp, error) {
	rec, err := loadOrSeed(mgr.GetRecordStore(), cfg, time.Now())
	if err != nil {
		return daily.NextUp{}, err
	}
	return daily.Next(rec), nil
}

// GetWeekResults summarizes the stored records of the days up to and
// including the configured day.
func GetWeekResults(cfg *contract.Config, mgr contract.StoreManager, days int) (daily.WeekSummary, error) {
	if days <= 0 {
		return daily.WeekSummary{}, fmt.Errorf("days must be positive (received %d)", days)
	}
	records := mgr.GetRecordStore()
	var recs []schema.DailyRecord
	for i := days - 1; i >= 0; i-- {
		date := cfg.Date.AddDate(0, 0, -i).Format(schema.DateLayout)
		rec, ok, err := records.Load(date)
		if err != nil {
			return daily.WeekSummary{}, err
		}
		if ok {
			recs = append(recs, rec)
		}
	}
	return daily.Summarize(recs), nil
}

// updateDay runs a read, modify, write cycle on the configured day and then
// advances the progression engines.
func updateDay(cfg *contract.Config, mgr contract.StoreManager, fn func(schema.DailyRecord, time.Time) (schema.DailyRecord, error)) (schema.DayOutcome, error) {
	now := time.Now()
	records := mgr.GetRecordStore()
	rec, err := loadOrSeed(records, cfg, now)
	if err != nil {
		return schema.DayOutcome{}, err
	}
	if rec, err = fn(rec, now); err != nil {
		return schema.DayOutcome{}, err
	}
	if err := records.Save(rec); err != nil {
		return schema.DayOutcome{}, fmt.Errorf("failed to save record: %w", err)
	}
	profiles, err := syncProfiles(mgr, cfg, now)
	if err != nil {
		return schema.DayOutcome{}, err
	}
	return schema.DayOutcome{Record: rec, Profiles: profiles}, nil
}

// loadOrSeed returns the stored record of the configured day. A missing
// record starts empty with the pending todos of the latest earlier day.
func loadOrSeed(records contract.RecordStore, cfg *contract.Config, now time.Time) (schema.DailyRecord, error) {
	date := cfg.DateString()
	rec, ok, err := records.Load(date)
	if err != nil {
		return schema.DailyRecord{}, err
	}
	if ok {
		return rec, nil
	}
	carry, err := carryTodos(records, date)
	if err != nil {
		return schema.DailyRecord{}, err
	}
	return daily.Recompute(schema.DailyRecord{Date: date, Todos: carry}, cfg.Weights, now), nil
}

// carryTodos returns the pending todos of the newest record before date.
func carryTodos(records contract.RecordStore, date string) ([]schema.TodoItem, error) {
	prev, ok, err := records.LatestBefore(date)
	if err != nil || !ok {
		return nil, err
	}
	return prev.PendingTodos(), nil
}

// loadRecordsSince loads every stored record dated on or after since.
func loadRecordsSince(records contract.RecordStore, since string) ([]schema.DailyRecord, error) {
	dates, err := records.ListDates()
	if err != nil {
		return nil, err
	}
	var out []schema.DailyRecord
	for _, d := range dates {
		if d < since {
			continue
		}
		rec, ok, err := records.Load(d)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
