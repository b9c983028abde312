package schema

import "time"

// HistoryStatus represents the status of the scan history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalDayRows  int              `json:"total_day_rows"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the dailyxp_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Command       string
	TargetDate    string
	ConfigParams  *string
}

// DayScoreRecord represents a row from the dailyxp_day_scores table.
// One row is written per engine version per run.
type DayScoreRecord struct {
	RunID         int64
	Date          string
	EngineVersion string
	RawScore      int32
	XP            float64
	Grade         string
	XPTotal       float64
	Level         int32
	Class         string
	RecordedAt    time.Time
}
