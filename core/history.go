package core

import (
	"context"
	"time"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// beginRun opens a history run and stores its ID in the returned context.
// History is optional, so failures are logged and the run continues untracked.
func beginRun(ctx context.Context, mgr contract.StoreManager, command string, cfg *contract.Config, start time.Time) context.Context {
	store := mgr.GetHistoryStore()
	if store == nil {
		return ctx
	}
	configParams := map[string]any{
		"repo_path":     cfg.RepoPath,
		"data_dir":      cfg.DataDir,
		"profile_dir":   cfg.ProfileDir,
		"default_model": cfg.DefaultModel,
		"weights":       cfg.Weights,
	}
	runID, err := store.BeginRun(start, command, cfg.DateString(), configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return ctx
	}
	return withRunID(ctx, runID)
}

// endRun closes the history run of the context, if any.
func endRun(ctx context.Context, mgr contract.StoreManager) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	if err := mgr.GetHistoryStore().EndRun(runID, time.Now()); err != nil {
		contract.LogWarn("History tracking completion failed", err)
	}
}

// recordDayScores writes one history row per engine for the scored date.
// Engines that have no entry for the date are skipped.
func recordDayScores(ctx context.Context, mgr contract.StoreManager, date string, profiles []schema.Profile, now time.Time) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	store := mgr.GetHistoryStore()
	for _, p := range profiles {
		entry, ok := entryFor(p, date)
		if !ok {
			continue
		}
		rec := schema.DayScoreRecord{
			RunID:         runID,
			Date:          date,
			EngineVersion: string(p.Meta.EngineVersion),
			RawScore:      int32(entry.RawScore),
			XP:            entry.XP,
			Grade:         entry.Grade,
			XPTotal:       p.XPTotal,
			Level:         int32(p.Level),
			Class:         p.Class,
			RecordedAt:    now,
		}
		if err := store.RecordDayScore(runID, rec); err != nil {
			contract.Logger().Warn().Err(err).
				Str("version", rec.EngineVersion).
				Str("date", date).
				Msg("Failed to record day score")
		}
	}
}

// entryFor returns the scoring log entry of a date.
func entryFor(p schema.Profile, date string) (schema.ScoringLogEntry, bool) {
	for i := len(p.Meta.ScoringLog) - 1; i >= 0; i-- {
		if e := p.Meta.ScoringLog[i]; e.Date == date {
			return e, true
		}
	}
	return schema.ScoringLogEntry{}, false
}
