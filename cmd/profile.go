package cmd

import (
	"strings"

	"github.com/huangsam/dailyxp/core"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// profileCmd shows progression profiles.
var profileCmd = &cobra.Command{
	Use:   "profile [version]",
	Short: "Show progression profiles.",
	Long: `Show the level, XP, class, streak and milestones of each engine.

Engines:
  v1 - ascending chain baseline
  v2 - adds an activity streak bonus and an XP floor
  v3 - soft-capped scores with a decaying momentum chain

Examples:
  dailyxp profile
  dailyxp profile v2 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: entrySetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		var v schema.EngineVersion
		if len(args) == 1 {
			v = schema.EngineVersion(strings.ToLower(args[0]))
		}
		if err := core.ExecuteProfile(rootCtx, cfg, storeManager, v); err != nil {
			contract.LogFatal("Cannot show profile", err)
		}
	},
}

// rescoreCmd recomputes stored records.
var rescoreCmd = &cobra.Command{
	Use:   "rescore [repo-path]",
	Short: "Recompute stored records with the current weights.",
	Long: `Recompute the stats of every stored daily record, then advance the profiles.

Without --rebuild, days already in a scoring log keep their frozen XP.
With --rebuild, every profile is replayed from scratch and XP may go down.

Examples:
  dailyxp rescore
  dailyxp rescore --rebuild`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRescore(rootCtx, cfg, storeManager, viper.GetBool("rebuild")); err != nil {
			contract.LogFatal("Cannot rescore records", err)
		}
	},
}

// pricingCmd shows the effective pricing table.
var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Show the per-model token pricing.",
	Long: `Show the built-in pricing merged with the pricing table of the config file.
Rates are USD per million tokens.`,
	Args:    cobra.NoArgs,
	PreRunE: entrySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePricing(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot show pricing", err)
		}
	},
}
