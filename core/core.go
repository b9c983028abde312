// Package core has the executors behind every command: scanning a day,
// manual entries, summaries and progression upkeep.
package core

import (
	"context"
	"time"

	"github.com/huangsam/dailyxp/core/daily"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/internal/outwriter"
	"github.com/huangsam/dailyxp/schema"
)

// WeekDays is the window of the week summary.
const WeekDays = 7

// ExecuteScan scans the configured day and prints the updated record and profiles.
func ExecuteScan(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.StoreManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		outwriter.LogScanHeader(cfg)
	}
	outcome, err := GetScanResults(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteDay(outcome, cfg, time.Since(start))
}

// ExecuteAdd records a manual accomplishment and prints it.
func ExecuteAdd(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, entry daily.ManualEntry) error {
	acc, outcome, err := AddAccomplishment(cfg, mgr, entry)
	if err != nil {
		return err
	}
	return outwriter.WriteChange("Added accomplishment", acc, outcome, cfg)
}

// ExecuteTokens records a manual token usage entry and prints it.
func ExecuteTokens(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, in daily.ManualTokens) error {
	entry, outcome, err := AddTokens(cfg, mgr, in)
	if err != nil {
		return err
	}
	return outwriter.WriteChange("Logged tokens", entry, outcome, cfg)
}

// ExecuteTodo adds a todo and prints it.
func ExecuteTodo(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, task string, priority schema.Priority) error {
	todo, outcome, err := AddTodo(cfg, mgr, task, priority)
	if err != nil {
		return err
	}
	return outwriter.WriteChange("Added todo", todo, outcome, cfg)
}

// ExecuteDone completes a todo and prints it.
func ExecuteDone(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, id string) error {
	todo, outcome, err := CompleteTodo(cfg, mgr, id)
	if err != nil {
		return err
	}
	return outwriter.WriteChange("Completed todo", todo, outcome, cfg)
}

// ExecuteNext prints pending todos and active drafts.
func ExecuteNext(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	next, err := GetNextResults(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteNext(next, cfg)
}

// ExecuteWeek prints the summary of the last seven days.
func ExecuteWeek(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	summary, err := GetWeekResults(cfg, mgr, WeekDays)
	if err != nil {
		return err
	}
	return outwriter.WriteWeek(summary, cfg)
}

// ExecuteProfile prints one or every profile.
func ExecuteProfile(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, version schema.EngineVersion) error {
	profiles, err := GetProfileResults(cfg, mgr, version)
	if err != nil {
		return err
	}
	return outwriter.WriteProfiles(profiles, cfg)
}

// ExecuteRescore recomputes every stored record and prints the profiles.
func ExecuteRescore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, rebuild bool) error {
	start := time.Now()
	outcome, err := GetRescoreResults(ctx, cfg, mgr, rebuild)
	if err != nil {
		return err
	}
	return outwriter.WriteRescore(outcome, cfg, time.Since(start))
}

// ExecutePricing prints the effective pricing table.
func ExecutePricing(_ context.Context, cfg *contract.Config) error {
	return outwriter.WritePricing(GetPricingResults(cfg), cfg)
}
