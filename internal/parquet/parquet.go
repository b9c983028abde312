// Package parquet provides data structures and functions for exporting dailyxp
// history and scoring logs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/dailyxp/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single dailyxp command run with metadata.
// This struct maps to the dailyxp_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Command is the subcommand that produced the run, such as scan
	Command string `parquet:"command,snappy"`

	// TargetDate is the YYYY-MM-DD day the run operated on
	TargetDate string `parquet:"target_date,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// DayScore is one engine version's view of a day at the time of a run.
// This struct maps to the dailyxp_day_scores database table.
type DayScore struct {
	RunID         int64     `parquet:"run_id,snappy"`
	ScoreDate     string    `parquet:"score_date,snappy"`
	EngineVersion string    `parquet:"engine_version,dict,snappy"`
	RawScore      int32     `parquet:"raw_score,snappy"`
	XP            float64   `parquet:"xp,snappy"`
	Grade         string    `parquet:"grade,dict,snappy"`
	XPTotal       float64   `parquet:"xp_total,snappy"`
	Level         int32     `parquet:"level,snappy"`
	Class         string    `parquet:"class,dict,snappy"`
	RecordedAt    time.Time `parquet:"recorded_at,snappy"`
}

// ScoringLogEntry flattens one profile scoring log row.
type ScoringLogEntry struct {
	EngineVersion      string  `parquet:"engine_version,dict,snappy"`
	Date               string  `parquet:"date,snappy"`
	RawScore           int32   `parquet:"raw_score,snappy"`
	Commits            int32   `parquet:"commits,snappy"`
	ShippedCount       int32   `parquet:"shipped_count,snappy"`
	ShipRate           float64 `parquet:"ship_rate,snappy"`
	AgentCost          float64 `parquet:"agent_cost,snappy"`
	Words              int32   `parquet:"words,snappy"`
	UniqueTypes        int32   `parquet:"unique_types,snappy"`
	HighValuePoints    int32   `parquet:"high_value_points,snappy"`
	BuilderPoints      int32   `parquet:"builder_points,snappy"`
	ScribePoints       int32   `parquet:"scribe_points,snappy"`
	StrategistPoints   int32   `parquet:"strategist_points,snappy"`
	AscendingChain     int32   `parquet:"ascending_chain,snappy"`
	MomentumChain      int32   `parquet:"momentum_chain,snappy"`
	StreakDays         int32   `parquet:"streak_days,snappy"`
	ChainMultiplier    float64 `parquet:"chain_multiplier,snappy"`
	MomentumMultiplier float64 `parquet:"momentum_multiplier,snappy"`
	BaseScore          float64 `parquet:"base_score,snappy"`
	TotalMultiplier    float64 `parquet:"total_multiplier,snappy"`
	XP                 float64 `parquet:"xp,snappy"`
	Grade              string  `parquet:"grade,dict,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDayScoresParquet writes a slice of DayScore structs to a Parquet file.
func WriteDayScoresParquet(data []DayScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteScoringLogParquet writes a slice of ScoringLogEntry structs to a Parquet file.
func WriteScoringLogParquet(data []ScoringLogEntry, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet creates outputPath and writes data with a schema inferred
// from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Command:       record.Command,
			TargetDate:    record.TargetDate,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertDayScoreRecords converts schema.DayScoreRecord to DayScore for Parquet export.
func ConvertDayScoreRecords(records []schema.DayScoreRecord) []DayScore {
	result := make([]DayScore, len(records))
	for i, record := range records {
		result[i] = DayScore{
			RunID:         record.RunID,
			ScoreDate:     record.Date,
			EngineVersion: record.EngineVersion,
			RawScore:      record.RawScore,
			XP:            record.XP,
			Grade:         record.Grade,
			XPTotal:       record.XPTotal,
			Level:         record.Level,
			Class:         record.Class,
			RecordedAt:    record.RecordedAt,
		}
	}
	return result
}

// ConvertScoringLog flattens the scoring log of a profile.
func ConvertScoringLog(version schema.EngineVersion, entries []schema.ScoringLogEntry) []ScoringLogEntry {
	result := make([]ScoringLogEntry, len(entries))
	for i, e := range entries {
		result[i] = ScoringLogEntry{
			EngineVersion:      string(version),
			Date:               e.Date,
			RawScore:           int32(e.RawScore),
			Commits:            int32(e.Commits),
			ShippedCount:       int32(e.ShippedCount),
			ShipRate:           e.ShipRate,
			AgentCost:          e.AgentCost,
			Words:              int32(e.Words),
			UniqueTypes:        int32(e.UniqueTypes),
			HighValuePoints:    int32(e.HighValuePoints),
			BuilderPoints:      int32(e.CategoryPoints[schema.BuilderCategory]),
			ScribePoints:       int32(e.CategoryPoints[schema.ScribeCategory]),
			StrategistPoints:   int32(e.CategoryPoints[schema.StrategistCategory]),
			AscendingChain:     int32(e.AscendingChain),
			MomentumChain:      int32(e.MomentumChain),
			StreakDays:         int32(e.StreakDays),
			ChainMultiplier:    e.ChainMultiplier,
			MomentumMultiplier: e.MomentumMultiplier,
			BaseScore:          e.BaseScore,
			TotalMultiplier:    e.TotalMultiplier,
			XP:                 e.XP,
			Grade:              e.Grade,
		}
	}
	return result
}
