// Package handlerwrapper adapts typed message handlers to watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Black-And-White-Club/ruler-bot/internal/observability/attr"
)

type ctxKey string

// CtxKeyReplyTo holds the reply topic requested by the sender, if any.
const CtxKeyReplyTo ctxKey = "reply_to"

// ReplyToMetadataKey is the message metadata entry read into CtxKeyReplyTo.
const ReplyToMetadataKey = "reply_to"

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// HandlerFunc is a handler for a decoded payload.
type HandlerFunc[T any] func(ctx context.Context, payload *T) ([]Result, error)

// ReplyTo returns the reply topic stored in ctx.
func ReplyTo(ctx context.Context) (string, bool) {
	rt, ok := ctx.Value(CtxKeyReplyTo).(string)
	return rt, ok && rt != ""
}

// WrapTyped decodes the JSON payload into T, runs handler and publishes what
// it returns. Payloads that do not decode are logged and acked so they are
// not redelivered. Handler and publish errors nack the message.
func WrapTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler HandlerFunc[T],
) message.NoPublishHandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(handlerName)
	}

	return func(msg *message.Message) error {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = msg.UUID
		}

		ctx := attr.WithCorrelationID(msg.Context(), correlationID)
		if rt := msg.Metadata.Get(ReplyToMetadataKey); rt != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, rt)
		}

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			logger.WarnContext(ctx, "Dropping message with undecodable payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.SetStatus(codes.Error, "undecodable payload")
			return nil
		}

		results, err := handler(ctx, &payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			span.RecordError(err)
			return err
		}

		for _, r := range results {
			out, err := NewMessage(correlationID, r)
			if err != nil {
				span.RecordError(err)
				return err
			}
			if err := publisher.Publish(r.Topic, out); err != nil {
				span.RecordError(err)
				return fmt.Errorf("failed to publish to %s: %w", r.Topic, err)
			}
			logger.DebugContext(ctx, "Published handler result",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("topic", r.Topic),
			)
		}
		return nil
	}
}

// NewMessage encodes r as a JSON message carrying correlationID.
func NewMessage(correlationID string, r Result) (*message.Message, error) {
	if r.Topic == "" {
		return nil, fmt.Errorf("result has no topic")
	}
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}

	msg := message.NewMessage(uuid.NewString(), body)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}
	for k, v := range r.Metadata {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}
