package main

import (
	"github.com/spf13/cobra"

	"github.com/dani3/rash/internal/cli"
)

var parseFromStdin bool

var parseCmd = &cobra.Command{
	Use:   "parse [line...]",
	Short: "Parse each argument as a command line and print the result",
	Example: `  rash parse 'sort in.txt | uniq -c > out.txt &'
  rash parse 'sort < in.txt > out.txt'
  rash parse --format json 'ls -l | wc -l'
  history | rash parse --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		if parseFromStdin {
			exitCode = cli.RunParseStream(cmd.Context(), env, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		}
		exitCode = cli.RunParse(env, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseFromStdin, "stdin", false, "read lines from standard input instead of arguments")
	rootCmd.AddCommand(parseCmd)
}
