package main

import (
	"github.com/spf13/cobra"

	"github.com/dani3/rash/internal/cli"
	"github.com/dani3/rash/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the parser as MCP tools on stdin/stdout",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the
parse_line, lint_line and list_rules tools. Results are always JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		// stdout carries the protocol.
		env.Printer = cli.NewPrinter(cli.FormatJSON, false)

		srv := mcpserver.New(env, version)
		env.Log.Info("mcp server starting", "version", version)
		return mcpserver.Serve(cmd.Context(), srv, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
