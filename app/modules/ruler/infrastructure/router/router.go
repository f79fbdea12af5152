package rulerrouter

import (
	"context"
	"log/slog"

	rulerevents "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain/events"
	rulerhandlers "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/handlers"
	"github.com/Black-And-White-Club/ruler-bot/internal/eventbus"
	"github.com/Black-And-White-Club/ruler-bot/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// RulerRouter handles Watermill handler registration for ruler commands.
type RulerRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewRulerRouter creates a new RulerRouter.
func NewRulerRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *RulerRouter {
	return &RulerRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *RulerRouter) Configure(_ context.Context, handlers rulerhandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandlers wires command topics to handler methods.
func (r *RulerRouter) registerHandlers(handlers rulerhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, rulerevents.CommandStartV1, handlers.HandleStart)
	registerHandler(deps, rulerevents.CommandPlayV1, handlers.HandlePlay)
	registerHandler(deps, rulerevents.CommandChatTopV1, handlers.HandleChatTop)
	registerHandler(deps, rulerevents.CommandGlobalTopV1, handlers.HandleGlobalTop)
	registerHandler(deps, rulerevents.CommandHelpV1, handlers.HandleHelp)

	r.logger.Info("Ruler module handlers registered successfully",
		slog.Int("handler_count", len(r.router.Handlers())),
	)
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// Results are published by the wrapper so reply topics can vary per message.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "ruler." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *RulerRouter) Close() error {
	return r.router.Close()
}
