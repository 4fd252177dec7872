package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dani3/rash/internal/audit"
	"github.com/dani3/rash/internal/cli"
	"github.com/dani3/rash/internal/config"
)

var (
	cfgPath   string
	debug     bool
	format    string
	colorMode string
	command   string

	// exitCode is set by the subcommand that ran.
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "rash",
	Short: "A tiny shell front end that parses command lines",
	Long: `rash reads command lines and shows how they break down into pipeline
stages, redirections and the background flag. It does not run anything.

With no arguments it starts an interactive read loop. With -c it parses a
single line and exits.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		if cmd.Flags().Changed("command") {
			exitCode = cli.RunParse(env, []string{command}, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		}
		exitCode = runRepl(cmd, cfg, env)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", config.ConfigPath(), "config file path")
	pf.BoolVar(&debug, "debug", false, "log diagnostics to stderr")
	pf.StringVar(&format, "format", "", "output format: text, json or yaml (default from config)")
	pf.StringVar(&colorMode, "color", "", "color output: auto, always or never (default from config)")

	rootCmd.Flags().StringVarP(&command, "command", "c", "", "parse a single line and exit")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(afero.NewOsFs(), cfgPath)
	if err != nil {
		return nil, err
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if colorMode != "" {
		cfg.Output.Color = colorMode
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// loadEnv builds the collaborators every front end shares.
func loadEnv(cmd *cobra.Command) (*config.Config, *cli.Env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	env := &cli.Env{
		Printer: cli.NewPrinter(cfg.Output.Format, cli.ShouldColor(cfg.Output.Color, cmd.OutOrStdout())),
		Log:     log,
	}

	if cfg.Lint.Enabled {
		engine, err := cfg.NewLintEngine(afero.NewOsFs())
		if err != nil {
			return nil, nil, fmt.Errorf("lint: %w", err)
		}
		env.Lint = engine
	}

	if cfg.Audit.Enabled {
		logger, err := audit.NewLogger(cfg.Audit.Path)
		if err != nil {
			// Continue without audit logging.
			log.Warn("audit disabled", "path", cfg.Audit.Path, "err", err)
		} else {
			env.Audit = logger
		}
	}

	log.Debug("config loaded", "path", cfgPath, "format", cfg.Output.Format,
		"lint", cfg.Lint.Enabled, "audit", env.Audit != nil)
	return cfg, env, nil
}
