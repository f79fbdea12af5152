package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Black-And-White-Club/ruler-bot/app/modules/ruler"
	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	rulerhttp "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/httpapi"
	rulermigrations "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/ruler-bot/config"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
	"github.com/Black-And-White-Club/ruler-bot/internal/eventbus"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability"
	rulermetrics "github.com/Black-And-White-Club/ruler-bot/internal/observability/metrics/ruler"
)

const shutdownTimeout = 10 * time.Second

// App holds every long-lived resource of the bot.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Store       *tablestore.Store
	EventBus    eventbus.EventBus
	Router      *message.Router
	Registry    *prometheus.Registry
	HTTPServer  *http.Server
	RulerModule *ruler.Module

	wg sync.WaitGroup
}

// NewApp opens storage and the bus and builds the ruler module. On error
// everything opened so far is closed again.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      cfg.Observability.LogFormat,
			Environment: cfg.Observability.Environment,
			Service:     "ruler-bot",
		})
	}

	app = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	store, err := tablestore.Open(ctx, tablestore.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	}, logger)
	if err != nil {
		return app, fmt.Errorf("failed to open database: %w", err)
	}
	app.Store = store

	if cfg.Database.AutoMigrate {
		group, err := rulermigrations.Apply(ctx, store.DB())
		if err != nil {
			return app, err
		}
		logger.InfoContext(ctx, "Database migrations applied", slog.String("group", group.String()))
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := rulermetrics.NewPrometheus(app.Registry)
	if err != nil {
		return app, fmt.Errorf("failed to register metrics: %w", err)
	}

	bus, err := eventbus.New(eventbus.Config{NATSURL: cfg.NATS.URL}, logger)
	if err != nil {
		return app, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	router, err := eventbus.NewRouter(eventbus.RouterConfig{}, logger)
	if err != nil {
		return app, err
	}
	app.Router = router

	httpRouter := newHTTPRouter(app.Registry, store, logger)

	module, err := ruler.NewRulerModule(ctx, ruler.Deps{
		Logger:     logger,
		Tracer:     observability.Tracer(),
		Metrics:    metrics,
		DB:         store,
		EventBus:   bus,
		Router:     router,
		HTTPRouter: httpRouter,
		HTTP: rulerhttp.Config{
			RateLimit: cfg.HTTP.RateLimit,
			RateBurst: cfg.HTTP.RateBurst,
		},
		Policy: rulerdomain.GrowthPolicy{
			Cooldown: cfg.Game.Cooldown,
			MinDelta: cfg.Game.MinDelta,
			MaxDelta: cfg.Game.MaxDelta,
		},
		TopLimit: cfg.Game.TopLimit,
	})
	if err != nil {
		return app, fmt.Errorf("failed to initialize ruler module: %w", err)
	}
	app.RulerModule = module

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

// Run serves HTTP and processes commands until ctx is cancelled or the router
// stops.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.wg.Add(1)
	go app.RulerModule.Run(ctx, &app.wg)

	httpErr := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting HTTP server", slog.String("addr", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
			cancel()
		}
	}()

	app.Logger.Info("Starting message router")
	routerErr := app.Router.Run(ctx)

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := app.HTTPServer.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	select {
	case err := <-httpErr:
		return fmt.Errorf("http server failed: %w", err)
	default:
	}
	if routerErr != nil {
		return fmt.Errorf("message router failed: %w", routerErr)
	}
	return nil
}

// Running is closed once the message router is consuming.
func (app *App) Running() chan struct{} {
	return app.Router.Running()
}

// Close releases every resource in reverse order of creation.
func (app *App) Close() error {
	var errs []error
	if app.RulerModule != nil {
		errs = append(errs, app.RulerModule.Close())
	} else if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	app.wg.Wait()
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.Store != nil {
		errs = append(errs, app.Store.Close())
	}
	app.Logger.Info("Application shut down")
	return errors.Join(errs...)
}
