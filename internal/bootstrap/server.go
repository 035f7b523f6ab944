package bootstrap

import (
	"time"

	infracontext "github.com/Hosseinjeff/Wholesale-project/infrastructure/context"
	infragin "github.com/Hosseinjeff/Wholesale-project/infrastructure/gin"
	infralogger "github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/metrics"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/sse"
	"github.com/Hosseinjeff/Wholesale-project/internal/api"
	"github.com/Hosseinjeff/Wholesale-project/internal/config"
	"github.com/Hosseinjeff/Wholesale-project/internal/feed"
	"github.com/Hosseinjeff/Wholesale-project/internal/scheduler"
	"github.com/gin-gonic/gin"
)

const (
	httpTimeoutSeconds = 30
	idleTimeoutSeconds = 60
	metricsNamespace   = "wholesale"
)

// SetupHTTPServer creates and configures the HTTP server.
func SetupHTTPServer(app *App) *infragin.Server {
	cfg, log := app.Config, app.Log

	handler := api.NewHandler(
		app.Ingest,
		app.Extractor,
		app.Store,
		app.Profiles,
		app.Ingest.Monitor(),
		api.Config{
			Version:          cfg.Service.Version,
			MaxContentLength: cfg.Ingest.MaxContentLength,
		},
		log,
	)

	opts := api.RouteOptions{
		JWTSecret:    cfg.Auth.JWTSecret,
		WebhookRate:  cfg.Ingest.RateLimit.PerSecond,
		WebhookBurst: cfg.Ingest.RateLimit.Burst,
		Metrics:      app.Telemetry.Handler(),
		Events:       sse.Handler(app.Stream, log, feed.Filter),
	}
	httpMetrics := metrics.NewHTTP(app.Telemetry.Registerer(), metricsNamespace)
	if opts.JWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET not set, operational routes are unprotected")
	}

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithTimeouts(httpTimeoutSeconds*time.Second, httpTimeoutSeconds*time.Second, idleTimeoutSeconds*time.Second).
		WithHealthCheck("database", infragin.PingChecker("database", infragin.HealthStatusUnhealthy, func() error {
			ctx, cancel := infracontext.WithPingTimeout()
			defer cancel()
			return app.Store.Ping(ctx)
		})).
		WithRoutes(func(router *gin.Engine) {
			router.Use(httpMetrics.Middleware())
			api.SetupRoutes(router, handler, opts)
		})

	if app.Redis != nil {
		builder = builder.WithHealthCheck("redis", infragin.PingChecker("redis", infragin.HealthStatusDegraded, func() error {
			ctx, cancel := infracontext.WithPingTimeout()
			defer cancel()
			return app.Redis.Ping(ctx).Err()
		}))
	}

	return builder.Build()
}

// SetupScheduler creates the periodic jobs, or returns nil when disabled.
func SetupScheduler(cfg *config.Config, app *App, log infralogger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		log.Info("Scheduler disabled")
		return nil, nil
	}
	return scheduler.New(scheduler.Config{
		WindowReportSpec: cfg.Scheduler.WindowReportSpec,
		RetentionSpec:    cfg.Scheduler.RetentionSpec,
		LogRetention:     cfg.Scheduler.LogRetention,
	}, app.Ingest.Monitor(), app.Telemetry, app.Store.Logs, log)
}
