package cmd

import (
	"github.com/huangsam/assetload/internal/iocache"
	"github.com/huangsam/assetload/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the assetload MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents preload and load images
and inspect the shared cache. Logs go to stderr so the protocol stream stays clean.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, client := newEngine()
		defer engine.Close()
		return mcp.StartMCPServer(cmd.Context(), cfg, engine, client, iocache.Manager)
	},
}
