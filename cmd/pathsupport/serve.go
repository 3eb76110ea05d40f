package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/app"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

func newServeCmd(flags *cliFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", true, "reload entity types and resource types when the configuration file changes")
	return cmd
}

func runServe(ctx context.Context, flags *cliFlags, watch bool) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging, flags)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting pathsupport",
		observability.String("version", version),
		observability.String("config", flags.configPath),
	)

	metrics := observability.NewMetrics("pathsupport")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg,
		app.WithLogger(logger),
		app.WithMetrics(metrics),
		app.WithVersion(version),
	)
	if err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		_ = application.Shutdown(context.Background())
		return err
	}

	var watcher *config.Watcher
	if watch {
		watcher = startConfigWatcher(ctx, application, flags.configPath, logger)
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")

	if watcher != nil {
		_ = watcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop gracefully", observability.Error(err))
		return err
	}

	logger.Info("pathsupport stopped")
	return nil
}

// startConfigWatcher reloads the application when the configuration
// file changes. A watcher that cannot start is logged and skipped.
func startConfigWatcher(
	ctx context.Context,
	application *app.Application,
	configPath string,
	logger observability.Logger,
) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		if reloadErr := application.Reload(ctx, newCfg); reloadErr != nil {
			logger.Error("failed to reload configuration", observability.Error(reloadErr))
		}
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
		return nil
	}
	return watcher
}
