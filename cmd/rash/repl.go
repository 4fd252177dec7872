package main

import (
	"github.com/spf13/cobra"

	"github.com/dani3/rash/internal/cli"
	"github.com/dani3/rash/internal/config"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read and parse lines interactively until EOF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		exitCode = runRepl(cmd, cfg, env)
		return nil
	},
}

func runRepl(cmd *cobra.Command, cfg *config.Config, env *cli.Env) int {
	return cli.RunRepl(env, cli.ReplOptions{
		Prompt:       cfg.Prompt,
		HistoryFile:  cfg.History.Path,
		HistoryLimit: cfg.History.Limit,
	}, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func init() {
	rootCmd.AddCommand(replCmd)
}
