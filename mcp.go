package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/career-mentor-ai/agent/transport/mcpserver"
	logx "github.com/tanpawarit/career-mentor-ai/pkg/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the career tools over MCP (stdio)",
	Long: `Exposes the catalog's deterministic tools, such as the career roadmap lookup,
as a Model Context Protocol server on stdin/stdout. No LLM credentials are needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries JSON-RPC.
		logx.Redirect(os.Stderr)

		registry, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		log.Info().Strs("tools", registry.Tools.Names()).Msg("starting mcp server on stdio")
		return mcpserver.New(registry.Tools, version).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
