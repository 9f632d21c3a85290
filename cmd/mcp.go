package cmd

import (
	"github.com/spf13/cobra"

	"yousearch/internal/logger"
	"yousearch/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Run the MCP server on stdin/stdout.

The server exposes a single tool, you_search {query, limit}. Logs go to
stderr so they never mix with protocol messages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.FromContext(cmd.Context())
		tools := mcpserver.New(newBackend(appConfig, log), appConfig.Demo, log)
		return tools.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
