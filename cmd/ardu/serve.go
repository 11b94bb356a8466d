package main

import (
	"github.com/spf13/cobra"

	"github.com/buckleypaul/ardu/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the toolchain as MCP tools over stdio",
	Long: `Runs an MCP server on stdin/stdout exposing list_boards, write_code,
compile_code, upload_code, serial_monitor and deploy_code to an agent
collaborator. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info().
			Str("workspace", workspaceRoot).
			Str("sketches", cfg.SketchDir).
			Msg("starting MCP server")
		s := server.New(cfg, workspaceRoot, logger)
		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
