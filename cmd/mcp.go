package cmd

import (
	"github.com/huangsam/dailyxp/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the dailyxp MCP server",
	Long:  `Launch an MCP server on stdio so that AI agents can log work, manage todos and read progress.`,
	Args:  cobra.MaximumNArgs(1),
	// Headers are suppressed by the handlers because stdout carries the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, gitClient, storeManager)
	},
}
