package rulerhandlers

import (
	"context"
	"log/slog"

	rulerservice "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/application"
	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	rulerevents "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain/events"
	"github.com/Black-And-White-Club/ruler-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability/attr"
	rulermetrics "github.com/Black-And-White-Club/ruler-bot/internal/observability/metrics/ruler"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Command names as they appear in replies and metrics.
const (
	CommandStart     = "start"
	CommandPlay      = "dick"
	CommandChatTop   = "chat_top"
	CommandGlobalTop = "global_top"
	CommandHelp      = "help"
)

// RulerHandlers implements the Handlers interface.
type RulerHandlers struct {
	service rulerservice.Service
	policy  rulerdomain.GrowthPolicy
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics rulermetrics.RulerMetrics
}

// NewRulerHandlers creates a new RulerHandlers instance. policy is only used
// to describe the game in the start reply.
func NewRulerHandlers(
	service rulerservice.Service,
	policy rulerdomain.GrowthPolicy,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics rulermetrics.RulerMetrics,
) Handlers {
	return &RulerHandlers{
		service: service,
		policy:  policy,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

// reply is the text and parse mode a command answers with.
type reply struct {
	text      string
	parseMode string
}

func plain(text string) reply { return reply{text: text} }

func markdown(text string) reply {
	return reply{text: text, parseMode: rulerevents.ParseModeMarkdown}
}

func (h *RulerHandlers) HandleStart(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error) {
	return h.handle(ctx, CommandStart, payload, true, func(ctx context.Context, inv rulerdomain.Invocation) (reply, error) {
		return plain(rulerservice.StartText(h.policy)), nil
	})
}

func (h *RulerHandlers) HandlePlay(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error) {
	return h.handle(ctx, CommandPlay, payload, true, func(ctx context.Context, inv rulerdomain.Invocation) (reply, error) {
		result, err := h.service.Play(ctx, inv)
		if err != nil {
			return reply{}, err
		}
		if result.IsFailure() {
			return plain(rulerservice.FailureMessage(*result.Failure)), nil
		}
		if !result.IsSuccess() {
			return plain(rulerservice.FailureText), nil
		}
		return markdown(rulerservice.RenderPlay(inv.Caller, *result.Success)), nil
	})
}

func (h *RulerHandlers) HandleChatTop(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error) {
	return h.handle(ctx, CommandChatTop, payload, true, func(ctx context.Context, inv rulerdomain.Invocation) (reply, error) {
		return h.leaderboardReply(h.service.GroupLeaderboard(ctx, inv.Chat))
	})
}

func (h *RulerHandlers) HandleGlobalTop(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error) {
	return h.handle(ctx, CommandGlobalTop, payload, true, func(ctx context.Context, inv rulerdomain.Invocation) (reply, error) {
		return h.leaderboardReply(h.service.GlobalLeaderboard(ctx, inv.Chat))
	})
}

func (h *RulerHandlers) HandleHelp(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error) {
	return h.handle(ctx, CommandHelp, payload, false, func(context.Context, rulerdomain.Invocation) (reply, error) {
		return plain(rulerservice.HelpText), nil
	})
}

func (h *RulerHandlers) leaderboardReply(result results.OperationResult[rulerservice.Leaderboard, error], err error) (reply, error) {
	if err != nil {
		return reply{}, err
	}
	if result.IsFailure() {
		return plain(rulerservice.FailureMessage(*result.Failure)), nil
	}
	if !result.IsSuccess() {
		return plain(rulerservice.FailureText), nil
	}
	return markdown(rulerservice.RenderLeaderboard(*result.Success)), nil
}

// handle runs the shared steps of every command: span, caller registration,
// the command itself and the reply envelope. Service errors are answered with
// the generic failure text and not returned, so the request is not redelivered.
func (h *RulerHandlers) handle(
	ctx context.Context,
	command string,
	payload *rulerevents.CommandRequestPayloadV1,
	register bool,
	fn func(ctx context.Context, inv rulerdomain.Invocation) (reply, error),
) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RulerHandlers."+command, trace.WithAttributes(
		attribute.Int64("user_id", payload.User.ID),
		attribute.Int64("chat_id", payload.Chat.ID),
	))
	defer span.End()

	h.metrics.RecordCommand(ctx, command)
	inv := payload.Invocation()

	h.logger.InfoContext(ctx, "Command received",
		attr.ExtractCorrelationID(ctx),
		attr.String("command", command),
		attr.Int64("user_id", inv.Caller.ID),
		attr.Int64("chat_id", inv.Chat.ID),
		attr.String("chat_type", string(inv.Chat.Type)),
	)

	out, err := h.run(ctx, inv, register, fn)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "Command failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("command", command),
			attr.Int64("user_id", inv.Caller.ID),
			attr.Error(err),
		)
		out = plain(rulerservice.FailureText)
	}

	return []handlerwrapper.Result{h.result(ctx, command, inv, out)}, nil
}

func (h *RulerHandlers) run(
	ctx context.Context,
	inv rulerdomain.Invocation,
	register bool,
	fn func(ctx context.Context, inv rulerdomain.Invocation) (reply, error),
) (reply, error) {
	if register {
		reg, err := h.service.RegisterCaller(ctx, inv)
		if err != nil {
			return reply{}, err
		}
		if reg.IsFailure() {
			return plain(rulerservice.FailureMessage(*reg.Failure)), nil
		}
	}
	return fn(ctx, inv)
}

func (h *RulerHandlers) result(ctx context.Context, command string, inv rulerdomain.Invocation, out reply) handlerwrapper.Result {
	topic := rulerevents.ReplyV1
	if rt, ok := handlerwrapper.ReplyTo(ctx); ok {
		topic = rt
	}
	return handlerwrapper.Result{
		Topic: topic,
		Payload: &rulerevents.CommandReplyPayloadV1{
			ChatID:    inv.Chat.ID,
			UserID:    inv.Caller.ID,
			Command:   command,
			Text:      out.text,
			ParseMode: out.parseMode,
		},
	}
}
