package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/internal/parquet"
	"github.com/huangsam/dailyxp/schema"
)

// ExecuteHistoryExport exports scan history and every stored scoring log to
// Parquet files prefixed by outputFile.
func ExecuteHistoryExport(w io.Writer, mgr contract.StoreManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetHistoryStore()
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	logRows, err := collectScoringLogs(mgr.GetProfileStore())
	if err != nil {
		return err
	}
	if status.TotalRuns == 0 && len(logRows) == 0 {
		return errors.New("no history or profile data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total day score records: %d\n", status.TotalDayRows)

	if status.TotalRuns > 0 {
		runs, err := store.GetAllRuns()
		if err != nil {
			return fmt.Errorf("failed to retrieve runs: %w", err)
		}
		dayScores, err := store.GetAllDayScores()
		if err != nil {
			return fmt.Errorf("failed to retrieve day scores: %w", err)
		}

		runsFile := outputFile + ".runs.parquet"
		parquetRuns := parquet.ConvertRunRecords(runs)
		if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
			return fmt.Errorf("failed to write runs: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

		dayScoresFile := outputFile + ".day_scores.parquet"
		parquetScores := parquet.ConvertDayScoreRecords(dayScores)
		if err := parquet.WriteDayScoresParquet(parquetScores, dayScoresFile); err != nil {
			return fmt.Errorf("failed to write day scores: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Exported %d day score records to: %s\n", len(parquetScores), dayScoresFile)
	}

	if len(logRows) > 0 {
		logFile := outputFile + ".scoring_log.parquet"
		if err := parquet.WriteScoringLogParquet(logRows, logFile); err != nil {
			return fmt.Errorf("failed to write scoring log: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Exported %d scoring log entries to: %s\n", len(logRows), logFile)
	}

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")
	return nil
}

// collectScoringLogs flattens the scoring log of every stored profile.
func collectScoringLogs(profiles contract.ProfileStore) ([]parquet.ScoringLogEntry, error) {
	var rows []parquet.ScoringLogEntry
	for _, v := range schema.AllEngineVersions {
		p, ok, err := profiles.Load(v)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s profile: %w", v, err)
		}
		if ok {
			rows = append(rows, parquet.ConvertScoringLog(v, p.Meta.ScoringLog)...)
		}
	}
	return rows, nil
}
