package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/internal/iocache"
	"github.com/huangsam/dailyxp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromViper reads and validates the history backend settings
// without the full shared setup.
func historyBackendFromViper() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads the minimal configuration needed for history operations.
// It avoids repository validation, so it works from any directory.
func historySetup() error {
	backend, connStr, err := historyBackendFromViper()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	cfg.DataDir = viper.GetString("data-dir")
	cfg.ProfileDir = viper.GetString("profile-dir")

	if err := iocache.InitStores(cfg); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup resolves the backend without opening the stores, so
// migrations can run against a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendFromViper()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on scan history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the optional scan history database",
	Long: `Manage the history of scan and rescore runs.

When a history backend is configured, every run stores:
- Run metadata (timestamp, command, target day, configuration, duration)
- One score row per engine for the scored day

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show history statistics
  export  - Export runs, day scores and scoring logs to Parquet
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  DAILYXP_HISTORY_BACKEND=sqlite dailyxp history status
  dailyxp history export --output-file dailyxp-data`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display history statistics and connection details",
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports history and scoring logs to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history and scoring logs to Parquet",
	Long: `Export stored runs, day scores and every engine's scoring log to Parquet.

Writes <output-file>.runs.parquet, <output-file>.day_scores.parquet and
<output-file>.scoring_log.parquet.

Requires: --output-file parameter

Examples:
  dailyxp history export --output-file dailyxp-data
  duckdb -c "SELECT * FROM read_parquet('dailyxp-data.scoring_log.parquet')"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(os.Stdout, storeManager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all scan history data",
	Long: `Delete all stored runs and day scores. Daily records and profiles are untouched.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the history database.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  dailyxp history migrate
  dailyxp history migrate --target-version 1
  dailyxp history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(os.Stdout, cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
