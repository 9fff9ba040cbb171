package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/career-coach/internal/cache"
	"github.com/phrazzld/career-coach/internal/config"
	"github.com/phrazzld/career-coach/internal/events"
	"github.com/phrazzld/career-coach/internal/generation"
	"github.com/phrazzld/career-coach/internal/orchestrator"
	"github.com/phrazzld/career-coach/internal/platform/gemini"
	"github.com/phrazzld/career-coach/internal/platform/openai"
	"github.com/phrazzld/career-coach/internal/platform/postgres"
	"github.com/phrazzld/career-coach/internal/platform/sqlite"
	"github.com/phrazzld/career-coach/internal/platform/telemetry"
	"github.com/phrazzld/career-coach/internal/service"
	"github.com/phrazzld/career-coach/internal/session"
	"github.com/phrazzld/career-coach/internal/task"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	redis redis.UniversalClient
	cache cache.Cache

	coach        service.CareerCoachService
	sessions     *session.Registry
	pool         *task.Pool
	orchestrator *orchestrator.Orchestrator
	emitter      *events.InMemoryEventEmitter

	shutdownTracer telemetry.ShutdownFunc
}

// appOption overrides a dependency, mostly for tests.
type appOption func(*appOverrides)

type appOverrides struct {
	generator generation.TextGenerator
	redis     redis.UniversalClient
}

func withGenerator(g generation.TextGenerator) appOption {
	return func(o *appOverrides) { o.generator = g }
}

func withRedisClient(c redis.UniversalClient) appOption {
	return func(o *appOverrides) { o.redis = c }
}

// newApplication creates a new application instance with all dependencies initialized.
// On error every resource opened so far is released.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	opts ...appOption,
) (_ *application, err error) {
	var overrides appOverrides
	for _, opt := range opts {
		opt(&overrides)
	}

	app := &application{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	app.shutdownTracer, err = telemetry.InitTracer(cfg.Telemetry, os.Stderr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	app.db, err = openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", "driver", cfg.Database.Driver)

	if cfg.Database.Driver == "sqlite" {
		if err := sqlite.Migrate(ctx, app.db); err != nil {
			return nil, err
		}
	}

	generator := overrides.generator
	if generator == nil {
		generator, err = newGenerator(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
	}
	logger.Info("LLM generator initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.ModelName)

	app.redis = overrides.redis
	if app.redis == nil && (cfg.Cache.Backend == "redis" || cfg.Events.RedisChannel != "") {
		app.redis, err = newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
	}

	app.cache = newCache(cfg.Cache, app.redis)

	budget, err := generation.NewTokenBudget(cfg.LLM.PromptTokenBudget)
	if err != nil {
		return nil, fmt.Errorf("failed to create token budget: %w", err)
	}
	prompts, err := generation.NewPromptBuilder(budget)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt builder: %w", err)
	}

	app.coach, err = service.NewCareerCoachService(service.Dependencies{
		Resumes:   newResumeRepository(app.db, cfg.Database.Driver, logger),
		Generator: generator,
		Prompts:   prompts,
		Cache:     app.cache,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create career coach service: %w", err)
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(events.NewLogHandler(logger))
	if cfg.Events.RedisChannel != "" {
		app.emitter.RegisterHandler(events.NewRedisPublisher(app.redis, cfg.Events.RedisChannel, logger))
		logger.Info("publishing session events to redis", "channel", cfg.Events.RedisChannel)
	}

	app.sessions = session.NewRegistry(logger,
		session.WithTTL(cfg.Stream.SessionTTL),
		session.WithSweepInterval(cfg.Stream.SweepInterval),
		session.WithListener(events.SessionListener(app.emitter, logger)),
	)
	app.sessions.Start(context.WithoutCancel(ctx))

	app.pool = task.NewPool(task.PoolConfig{
		WorkerCount: cfg.Stream.Workers,
		QueueSize:   cfg.Stream.QueueSize,
	}, logger)
	// Job IDs are session IDs. A job that failed without terminating its
	// session (a panic) must not leave the client waiting for the timeout.
	app.pool.SetErrorHandler(func(job task.Job, err error) {
		if errors.Is(err, orchestrator.ErrSessionEnded) {
			return
		}
		if ch, ok := app.sessions.GetChannel(job.ID()); ok {
			ch.CompleteWithError(err)
		}
	})
	app.pool.Start()

	app.orchestrator = orchestrator.New(app.sessions, []task.Producer{
		task.NewInterviewTask(app.coach),
		task.NewLearningPathTask(app.coach),
	}, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. It is safe
// on a partially initialized application.
func (app *application) cleanup() {
	if app.sessions != nil {
		app.sessions.Stop()
		app.sessions.Shutdown()
	}
	if app.pool != nil {
		app.pool.Stop()
	}
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing cache", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	if app.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		if err := app.shutdownTracer(ctx); err != nil {
			app.logger.Error("error flushing traces", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}

// openDatabase opens the configured resume database.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(ctx, cfg.URL, postgres.PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
	case "sqlite":
		return sqlite.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func newResumeRepository(db *sql.DB, driver string, logger *slog.Logger) service.ResumeRepository {
	if driver == "sqlite" {
		return sqlite.NewResumeStore(db, logger)
	}
	return postgres.NewPostgresResumeStore(db, logger)
}

func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.TextGenerator, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewGenerator(ctx, logger, cfg)
	case "openai":
		return openai.New(logger, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

func newRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func newCache(cfg config.CacheConfig, client redis.UniversalClient) cache.Cache {
	switch cfg.Backend {
	case "memory":
		return cache.NewMemory(cache.WithTTL(cfg.TTL))
	case "redis":
		return cache.NewRedis(client, cache.WithTTL(cfg.TTL), cache.WithPrefix(cfg.Prefix))
	default:
		return cache.NewNoop()
	}
}
