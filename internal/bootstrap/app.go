package bootstrap

import (
	"context"
	"fmt"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/circuitbreaker"
	infracontext "github.com/Hosseinjeff/Wholesale-project/infrastructure/context"
	infralogger "github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/profiling"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/sse"
	"github.com/Hosseinjeff/Wholesale-project/internal/config"
	"github.com/Hosseinjeff/Wholesale-project/internal/database"
	"github.com/Hosseinjeff/Wholesale-project/internal/feed"
	"github.com/Hosseinjeff/Wholesale-project/internal/ingest"
	"github.com/Hosseinjeff/Wholesale-project/internal/pipeline"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/Hosseinjeff/Wholesale-project/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// App holds the wired components shared by the server and the CLI.
type App struct {
	Config    *config.Config
	Log       infralogger.Logger
	Store     *database.Store
	Redis     *redis.Client
	Profiles  *profile.Store
	Extractor *pipeline.Extractor
	Telemetry *telemetry.Provider
	Stream    *sse.Broker
	Ingest    *ingest.Service

	cancel context.CancelFunc
}

// New loads configuration and wires every component. Close releases them.
func New(ctx context.Context, configPath string) (*App, error) {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log, err := CreateLogger(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	app := &App{Config: cfg, Log: log, cancel: cancel}

	if err = app.setup(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) setup(ctx context.Context) error {
	cfg, log := a.Config, a.Log

	// Phase 2: Setup database
	store, err := SetupDatabase(cfg, log)
	if err != nil {
		return err
	}
	a.Store = store

	// Phase 3: Setup redis and ingestion controls
	a.Redis, err = SetupRedis(cfg, log)
	if err != nil {
		return err
	}
	locker, flag := SetupControls(cfg, a.Redis)

	// Phase 4: Channel profiles and the extraction pipeline
	a.Profiles, err = SetupProfiles(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("setup profiles: %w", err)
	}
	a.Extractor = pipeline.New(a.Profiles, quality.NewChecker(cfg.Quality), store, log)

	// Phase 5: Telemetry, the live event stream and the ingestion boundary
	a.Telemetry = telemetry.NewDefaultProvider()
	a.Stream = sse.NewBroker(cfg.Stream, log)
	a.Ingest = ingest.NewService(ingest.Deps{
		Store:      store,
		Extractor:  a.Extractor,
		Locker:     locker,
		Flag:       flag,
		Recorder:   a.Telemetry,
		AlertSinks: []quality.AlertSink{a.Telemetry},
		Observers:  []ingest.Observer{feed.New(a.Stream, log)},
	}, ingest.Config{
		Retry: cfg.Ingest.Retry,
		Breaker: circuitbreaker.Config{
			MaxFailures: cfg.Ingest.Breaker.MaxFailures,
			Timeout:     cfg.Ingest.Breaker.Timeout,
			Interval:    cfg.Ingest.Breaker.Interval,
		},
		Window:      cfg.Quality.Window,
		ReplayDelay: cfg.Ingest.ReplayDelay,
	}, log)

	return nil
}

// Close stops the profile watcher and releases connections.
func (a *App) Close() {
	a.cancel()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Error("Failed to close redis client", infralogger.Error(err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Error("Failed to close database connection", infralogger.Error(err))
		}
	}
	_ = a.Log.Sync()
}

// Start runs the HTTP service until a shutdown signal.
func Start(ctx context.Context, configPath string) error {
	app, err := New(ctx, configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg, log := app.Config, app.Log
	profiling.StartPprofServer(log)

	log.Info("Starting Wholesale Extractor Service",
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("database", cfg.Database.Driver),
		infralogger.Bool("redis", cfg.Redis.Enabled),
	)

	sched, err := SetupScheduler(cfg, app, log)
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start(ctx)
		defer func() {
			stopCtx, cancel := infracontext.WithShutdownTimeout()
			defer cancel()
			if stopErr := sched.Stop(stopCtx); stopErr != nil {
				log.Warn("Scheduler stop timed out", infralogger.Error(stopErr))
			}
		}()
	}

	app.Stream.Start(ctx)
	defer func() {
		stopCtx, cancel := infracontext.WithShutdownTimeout()
		defer cancel()
		_ = app.Stream.Stop(stopCtx)
	}()

	server := SetupHTTPServer(app)
	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Wholesale Extractor Service stopped")
	return nil
}
