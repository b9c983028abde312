// Package cmd defines the command-line interface for dailyxp.
package cmd

import (
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(rescoreCmd)
	rootCmd.AddCommand(pricingCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("repo", ".", "Repository or folder to track (commands without a [repo-path] argument)")
	rootCmd.PersistentFlags().String("date", "", "Target day as YYYY-MM-DD (default: today)")
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory of daily records, relative to the repo root")
	rootCmd.PersistentFlags().String("profile-dir", contract.DefaultProfileDir, "Directory of progression profiles, relative to the repo root")
	rootCmd.PersistentFlags().String("transcripts-dir", "", "Directory of agent session transcripts (default: derived from the repo root)")
	rootCmd.PersistentFlags().StringSlice("estimate-dirs", nil, "Comma-separated directories of transcripts without usage telemetry")
	rootCmd.PersistentFlags().StringSlice("watch-dirs", contract.DefaultWatchDirs, "Comma-separated repo-relative directories walked for modified files")
	rootCmd.PersistentFlags().String("name", contract.DefaultName, "Display name on profiles")
	rootCmd.PersistentFlags().String("default-model", schema.DefaultModel, "Model used to price unknown or unnamed models")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored grades in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	addCmd.Flags().String("type", "manual", "Accomplishment type from the points table")
	addCmd.Flags().String("category", "", "Category override: builder or scribe or strategist")
	addCmd.Flags().Int("words", 0, "Words written")
	addCmd.Flags().Bool("shipped", false, "Mark as shipped (default depends on the type)")
	if err := viper.BindPFlags(addCmd.Flags()); err != nil {
		contract.LogFatal("Error binding add flags", err)
	}

	tokensCmd.Flags().String("model", "", "Model name or alias (default: --default-model)")
	tokensCmd.Flags().Int64("input-tokens", 0, "Input tokens")
	tokensCmd.Flags().Int64("output-tokens", 0, "Output tokens")
	tokensCmd.Flags().Int64("cache-read-tokens", 0, "Cache read tokens")
	tokensCmd.Flags().Int64("cache-write-tokens", 0, "Cache write tokens")
	tokensCmd.Flags().Float64("cost", 0, "Explicit cost in USD (overrides pricing)")
	tokensCmd.Flags().String("context", "", "Free text describing the session")
	if err := viper.BindPFlags(tokensCmd.Flags()); err != nil {
		contract.LogFatal("Error binding tokens flags", err)
	}

	todoCmd.Flags().String("priority", string(schema.MediumPriority), "Priority: high or medium or low")
	if err := viper.BindPFlags(todoCmd.Flags()); err != nil {
		contract.LogFatal("Error binding todo flags", err)
	}

	rescoreCmd.Flags().Bool("rebuild", false, "Replay every profile from scratch (XP may go down)")
	if err := viper.BindPFlags(rescoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding rescore flags", err)
	}

	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
