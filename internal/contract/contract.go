// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/dailyxp/schema"
)

// GitClient defines the git operations needed to observe a day of activity.
// This allows the scan logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns the output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetChangeLog returns name-status output for commits in the window.
	GetChangeLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)

	// GetNumstatLog returns numstat output for commits in the window.
	GetNumstatLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)

	// ListUntracked returns untracked, non-ignored paths relative to the repo root.
	ListUntracked(ctx context.Context, repoPath string) ([]string, error)
}

// StoreManager defines the interface for reaching every store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRecordStore() RecordStore
	GetProfileStore() ProfileStore
	GetHistoryStore() HistoryStore
}

// RecordStore persists one DailyRecord per calendar date.
type RecordStore interface {
	// Load returns the record for a date. A missing record is (zero, false, nil);
	// a record that fails to parse is an error wrapping ErrCorruptRecord.
	Load(date string) (schema.DailyRecord, bool, error)

	// Save atomically replaces the record for rec.Date.
	Save(rec schema.DailyRecord) error

	// ListDates returns every stored date in ascending order.
	ListDates() ([]string, error)

	// LatestBefore returns the newest record strictly before date.
	LatestBefore(date string) (schema.DailyRecord, bool, error)
}

// ProfileStore persists one Profile per engine version.
type ProfileStore interface {
	Load(version schema.EngineVersion) (schema.Profile, bool, error)
	Save(version schema.EngineVersion, profile schema.Profile) error
}

// HistoryStore records scan runs and per-day scores for later export.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, command, targetDate string, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time) error

	// RecordDayScore stores one engine's view of the scanned day
	RecordDayScore(runID int64, rec schema.DayScoreRecord) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllDayScores returns every day score ordered by run and version
	GetAllDayScores() ([]schema.DayScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}
