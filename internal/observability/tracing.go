package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used across the bot.
const TracerName = "github.com/Black-And-White-Club/ruler-bot"

// Tracer returns a tracer from the global provider. Without an SDK provider
// installed this is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
