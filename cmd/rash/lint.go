package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dani3/rash/internal/cli"
)

var lintListRules bool

var lintCmd = &cobra.Command{
	Use:   "lint <line>",
	Short: "Report suspicious but parseable constructs in a command line",
	Args: func(cmd *cobra.Command, args []string) error {
		if lintListRules {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		if lintListRules {
			if env.Lint == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "lint is disabled")
				return nil
			}
			for _, r := range env.Lint.Rules() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-26s %s\n", r.ID, r.Description)
			}
			return nil
		}
		exitCode = cli.RunLint(env, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	lintCmd.Flags().BoolVar(&lintListRules, "rules", false, "list the active rules")
	rootCmd.AddCommand(lintCmd)
}
