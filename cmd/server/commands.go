package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phrazzld/career-coach/internal/config"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/spf13/cobra"
)

// newRootCommand builds the CLI: serve (default) and migrate.
func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "career-coach",
		Short:         "AI career coach API with streaming interview and learning path generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a config file (defaults to ./config.yaml when present)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	migrate := &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Manage the resume store schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		},
	}

	root.AddCommand(serve, migrate)
	root.RunE = serve.RunE
	return root
}

// loadConfig loads configuration and installs the configured default logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"llm_provider", cfg.LLM.Provider,
		"cache_backend", cfg.Cache.Backend)
	log.Debug("database configuration", "url", maskDatabaseURL(cfg.Database.URL))
	return cfg, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log := logger.FromContext(ctx)

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
