package ruler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	rulerservice "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/application"
	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	rulerhandlers "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/handlers"
	rulerhttp "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/httpapi"
	rulerdb "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories"
	rulerrouter "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/router"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
	"github.com/Black-And-White-Club/ruler-bot/internal/eventbus"
	rulermetrics "github.com/Black-And-White-Club/ruler-bot/internal/observability/metrics/ruler"
)

// Deps are the shared resources the module is built from.
type Deps struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  rulermetrics.RulerMetrics
	DB       tablestore.Accessor
	EventBus eventbus.EventBus
	Router   *message.Router
	// HTTPRouter is optional. When set the read API is mounted on it.
	HTTPRouter chi.Router
	HTTP       rulerhttp.Config
	Policy     rulerdomain.GrowthPolicy
	TopLimit   int
}

// Module represents the ruler module.
type Module struct {
	RulerService rulerservice.Service
	RulerRouter  *rulerrouter.RulerRouter
	logger       *slog.Logger
	cancelFunc   context.CancelFunc
}

// NewRulerModule creates and initializes a new ruler module.
func NewRulerModule(ctx context.Context, deps Deps) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = rulermetrics.NewNoop()
	}

	logger.InfoContext(ctx, "ruler.NewRulerModule initializing")

	if err := deps.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid growth policy: %w", err)
	}

	// 1. Initialize Repository
	repo := rulerdb.NewRepository(deps.DB)

	// 2. Initialize Service
	service := rulerservice.NewRulerService(repo, logger, metrics, deps.Tracer, deps.DB,
		rulerservice.WithPolicy(deps.Policy),
		rulerservice.WithTopLimit(deps.TopLimit),
	)

	// 3. Initialize Handlers
	handlers := rulerhandlers.NewRulerHandlers(service, service.Policy(), logger, deps.Tracer, metrics)

	// 4. Initialize Router
	rulerRouter := rulerrouter.NewRulerRouter(
		logger,
		deps.Router,
		deps.EventBus,
		deps.EventBus,
		deps.Tracer,
	)

	// 5. Configure the router with handlers
	if err := rulerRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure ruler router: %w", err)
	}

	// 6. Mount the read API
	if deps.HTTPRouter != nil {
		api := rulerhttp.NewHandlers(service, logger)
		deps.HTTPRouter.Route("/api/v1", func(r chi.Router) {
			api.Routes(r, deps.HTTP)
		})
	}

	return &Module{
		RulerService: service,
		RulerRouter:  rulerRouter,
		logger:       logger,
	}, nil
}

// Run blocks until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting ruler module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Ruler module goroutine stopped")
}

// Close shuts down the ruler module.
func (m *Module) Close() error {
	m.logger.Info("Stopping ruler module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.RulerRouter != nil {
		if err := m.RulerRouter.Close(); err != nil {
			m.logger.Error("Error closing RulerRouter from module", "error", err)
			return fmt.Errorf("error closing RulerRouter: %w", err)
		}
	}

	m.logger.Info("Ruler module stopped")
	return nil
}
