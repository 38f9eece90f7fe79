package main

import (
	"pyreload/internal/config"
	"pyreload/internal/logging"
	"pyreload/internal/version"

	"github.com/spf13/cobra"
)

var (
	// rootFlag is the directory whose .pyreload configuration applies
	rootFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
	// logFormatFlag overrides the configured log format
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "pyreload",
	Short: "pyreload - deep reloader for Python packages",
	Long: `pyreload analyzes a Python package's from-import graph and computes the
dependency-respecting, cycle-aware order in which its modules must be
re-executed inside a long-lived host process. The CLI exposes the analysis
side of the pipeline: plan computation, graph export, and reload history.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("pyreload version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Directory holding .pyreload configuration")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default from config)")
}

// loadConfig reads configuration under --root and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a logger from config, with CLI flags taking precedence.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.ParseFormat(format),
		Level:  logging.ParseLevel(level),
	})
}
