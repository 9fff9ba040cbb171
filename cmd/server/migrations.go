package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/phrazzld/career-coach/internal/config"
	"github.com/phrazzld/career-coach/internal/platform/postgres"
	"github.com/phrazzld/career-coach/internal/platform/sqlite"
	"github.com/pressly/goose/v3"
)

var migrationCommands = []string{"up", "down", "status", "version"}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger without exiting; the error reaches main through the provider.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// newMigrationProvider returns the goose provider of the configured driver.
func newMigrationProvider(db *sql.DB, driver string, logger *slog.Logger) (*goose.Provider, error) {
	opts := []goose.ProviderOption{
		goose.WithLogger(&slogGooseLogger{logger: logger.With("component", "migrations")}),
	}
	switch driver {
	case "postgres":
		return postgres.NewMigrationProvider(db, opts...)
	case "sqlite":
		return sqlite.NewMigrationProvider(db, opts...)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// runMigrations executes one migration command against the configured database.
func runMigrations(ctx context.Context, cfg *config.Config, command string, out io.Writer) error {
	log := slog.Default().With("command", command, "driver", cfg.Database.Driver)

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	provider, err := newMigrationProvider(db, cfg.Database.Driver, log)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		logMigrationResults(log, results)
		if err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			if errors.Is(err, goose.ErrNoNextVersion) {
				log.Info("no migrations to roll back")
				return nil
			}
			return fmt.Errorf("migration down failed: %w", err)
		}
		logMigrationResults(log, []*goose.MigrationResult{result})
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status failed: %w", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if s.State == goose.StateApplied {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			_, _ = fmt.Fprintf(out, "%-8d %-40s %s\n", s.Source.Version, s.Source.Path, applied)
		}
	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		_, _ = fmt.Fprintln(out, version)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	return nil
}

func logMigrationResults(log *slog.Logger, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		attrs := []any{
			"version", r.Source.Version,
			"path", r.Source.Path,
			"direction", r.Direction,
			"duration", r.Duration,
		}
		if r.Error != nil {
			log.Error("migration failed", append(attrs, "error", r.Error)...)
			continue
		}
		log.Info("migration applied", attrs...)
	}
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if _, hasPassword := parsedURL.User.Password(); hasPassword {
		parsedURL.User = url.UserPassword(parsedURL.User.Username(), "****")
		return parsedURL.String()
	}
	return dbURL
}
