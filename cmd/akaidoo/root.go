package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"akaidoo/internal/config"
	akerr "akaidoo/internal/errors"
	"akaidoo/internal/logging"
	"akaidoo/internal/version"
)

var (
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "akaidoo",
	Short: "akaidoo - Odoo addon source shrinker",
	Long: `akaidoo condenses Odoo addon source into LLM-sized context: it resolves
an addon's dependency closure, scores models for relevance, and emits each
file as a structural skeleton with method bodies elided - while the models
that matter stay fully expanded.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.SetVersionTemplate("akaidoo version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human, json (default from config)")
}

// loadConfig reads the project config from the working directory.
func loadConfig() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ignoring invalid config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// newLogger builds the CLI logger. Flags win over config.
func newLogger(cfg *config.Config) *logging.Logger {
	levelName := cfg.Logging.Level
	if logLevelFlag != "" {
		levelName = logLevelFlag
	}
	format := logging.Format(cfg.Logging.Format)
	if logFormatFlag != "" {
		format = logging.Format(logFormatFlag)
	}
	return logging.New(logging.ParseLevel(levelName), format, os.Stderr)
}

func asCoded(err error, target **akerr.Error) bool {
	return errors.As(err, target)
}
