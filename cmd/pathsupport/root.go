package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// cliFlags holds the persistent command line flags.
type cliFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "pathsupport",
		Short: "Serve entities at their canonical paths as HTML and JSON:API",
		Long: `pathsupport serves stored entities as HTML pages and JSON:API
resources. Requests to an entity's canonical path that carry the JSON:API
media type and ?_format=api_json are answered with the entity's JSON:API
resource.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c",
		getEnvOrDefault(envConfigPath, "configs/pathsupport.yaml"), "path to configuration file")
	pf.StringVar(&flags.logLevel, "log-level",
		getEnvOrDefault(envLogLevel, ""), "log level (debug, info, warn, error); overrides the configuration")
	pf.StringVar(&flags.logFormat, "log-format",
		getEnvOrDefault(envLogFormat, ""), "log format (json, console); overrides the configuration")

	cmd.AddCommand(
		newServeCmd(flags),
		newRoutesCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates the logger from configuration, with flag overrides.
func newLogger(cfg config.LoggingConfig, flags *cliFlags) (observability.Logger, error) {
	logCfg := observability.LogConfig{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	}
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	observability.SetGlobalLogger(logger)
	return logger, nil
}
