package cmd

import (
	"strings"

	"github.com/huangsam/dailyxp/core"
	"github.com/huangsam/dailyxp/core/daily"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// scanCmd scans a day and updates its record and profiles.
var scanCmd = &cobra.Command{
	Use:   "scan [repo-path]",
	Short: "Scan a day of activity and update the daily record.",
	Long: `Observe a day of work and merge it into the daily record.

Sources:
- Git commits and untracked files named after the day
- Files modified during the day under the watch directories
- The content pipeline (drafts and finals)
- Agent transcripts and estimate directories for token usage

Manual accomplishments, todos and manual token entries survive every rescan.
After saving, every progression engine (v1, v2, v3) is advanced.

Examples:
  # Scan today in the current repository
  dailyxp scan

  # Scan a past day
  dailyxp scan --date 2026-02-11

  # Write the record as JSON
  dailyxp scan --output json --output-file today.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScan(rootCtx, cfg, gitClient, storeManager); err != nil {
			contract.LogFatal("Cannot scan day", err)
		}
	},
}

// addCmd records a manual accomplishment.
var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Record a manual accomplishment.",
	Long: `Add an accomplishment that a scan cannot see, such as a call or a shipped deal.

The type selects the points from the points table (default: manual).
The category and shipped state default from the type.

Examples:
  dailyxp add "Partner onboarding call" --type partner_onboard
  dailyxp add "Newsletter issue 12" --type newsletter --words 1200 --shipped`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: entrySetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		entry := daily.ManualEntry{
			Title:    strings.Join(args, " "),
			Type:     viper.GetString("type"),
			Category: schema.Category(strings.ToLower(viper.GetString("category"))),
			Words:    viper.GetInt("words"),
		}
		if cmd.Flags().Changed("shipped") {
			shipped := viper.GetBool("shipped")
			entry.Shipped = &shipped
		}
		if err := core.ExecuteAdd(rootCtx, cfg, storeManager, entry); err != nil {
			contract.LogFatal("Cannot add accomplishment", err)
		}
	},
}

// tokensCmd records manual token usage.
var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Record agent token usage by hand.",
	Long: `Log token usage for tools whose transcripts are not scanned.

Cost is priced from the pricing table unless --cost is given.

Examples:
  dailyxp tokens --model opus --input-tokens 120000 --output-tokens 8000
  dailyxp tokens --model cursor --cost 0.80 --context "refactor session"`,
	Args:    cobra.NoArgs,
	PreRunE: entrySetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		in := daily.ManualTokens{
			Model:            viper.GetString("model"),
			InputTokens:      viper.GetInt64("input-tokens"),
			OutputTokens:     viper.GetInt64("output-tokens"),
			CacheReadTokens:  viper.GetInt64("cache-read-tokens"),
			CacheWriteTokens: viper.GetInt64("cache-write-tokens"),
			Context:          viper.GetString("context"),
		}
		if cmd.Flags().Changed("cost") {
			cost := viper.GetFloat64("cost")
			in.Cost = &cost
		}
		if err := core.ExecuteTokens(rootCtx, cfg, storeManager, in); err != nil {
			contract.LogFatal("Cannot log tokens", err)
		}
	},
}

// todoCmd adds a todo.
var todoCmd = &cobra.Command{
	Use:   "todo <task>",
	Short: "Add a todo for the day.",
	Long: `Add a todo. Todos left open carry over to the next day's record.

Examples:
  dailyxp todo "Publish the recap" --priority high`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: entrySetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		priority := schema.Priority(strings.ToLower(viper.GetString("priority")))
		if err := core.ExecuteTodo(rootCtx, cfg, storeManager, strings.Join(args, " "), priority); err != nil {
			contract.LogFatal("Cannot add todo", err)
		}
	},
}

// doneCmd completes a todo.
var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a todo as done.",
	Long: `Complete a todo by its ID or a unique ID prefix.

Examples:
  dailyxp done 3f2a`,
	Args:    cobra.ExactArgs(1),
	PreRunE: entrySetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteDone(rootCtx, cfg, storeManager, args[0]); err != nil {
			contract.LogFatal("Cannot complete todo", err)
		}
	},
}

// nextCmd lists what is left to do.
var nextCmd = &cobra.Command{
	Use:   "next [repo-path]",
	Short: "List pending todos and active drafts.",
	Long: `Show open todos, highest priority first, and the drafts in the pipeline.
Nothing is written.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteNext(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list next items", err)
		}
	},
}

// weekCmd summarizes the last seven days.
var weekCmd = &cobra.Command{
	Use:   "week [repo-path]",
	Short: "Summarize the seven days ending on --date.",
	Long: `Summarize stored daily records: score, grade, shipped work, words and agent cost.
Days without a record are skipped.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWeek(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot summarize week", err)
		}
	},
}
