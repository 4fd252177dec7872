package main

import (
	"github.com/spf13/cobra"

	"github.com/dani3/rash/internal/cli"
)

var auditCmd = &cobra.Command{
	Use:       "audit <verify|show|tail [n]|stats>",
	Short:     "Inspect the hash-chained log of parsed lines",
	ValidArgs: []string{"verify", "show", "tail", "stats"},
	Args:      cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		exitCode = cli.RunAudit(cmd.OutOrStdout(), cfg.Audit.Path, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
