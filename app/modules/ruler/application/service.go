package rulerservice

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	rulerdb "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability/attr"
	rulermetrics "github.com/Black-And-White-Club/ruler-bot/internal/observability/metrics/ruler"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
)

const serviceName = "RulerService"

// RulerService implements the Service interface.
type RulerService struct {
	repo     rulerdb.Repository
	logger   *slog.Logger
	metrics  rulermetrics.RulerMetrics
	tracer   trace.Tracer
	db       tablestore.Accessor
	policy   rulerdomain.GrowthPolicy
	topLimit int
	rng      rulerdomain.Rand
	now      func() time.Time
}

// Option customises a RulerService.
type Option func(*RulerService)

// WithPolicy sets cooldown and delta range.
func WithPolicy(p rulerdomain.GrowthPolicy) Option {
	return func(s *RulerService) { s.policy = p }
}

// WithTopLimit sets how many rows a leaderboard shows.
func WithTopLimit(n int) Option {
	return func(s *RulerService) {
		if n > 0 {
			s.topLimit = n
		}
	}
}

// WithRand replaces the random source.
func WithRand(r rulerdomain.Rand) Option {
	return func(s *RulerService) { s.rng = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *RulerService) { s.now = now }
}

// sharedRand draws from the goroutine-safe top-level generator.
type sharedRand struct{}

func (sharedRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// NewRulerService creates a new RulerService.
func NewRulerService(
	repo rulerdb.Repository,
	logger *slog.Logger,
	metrics rulermetrics.RulerMetrics,
	tracer trace.Tracer,
	db tablestore.Accessor,
	opts ...Option,
) *RulerService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RulerService{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		policy:   rulerdomain.DefaultGrowthPolicy(),
		topLimit: rulerdomain.DefaultTopLimit,
		rng:      sharedRand{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the growth policy in effect.
func (s *RulerService) Policy() rulerdomain.GrowthPolicy {
	return s.policy
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RulerService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx runs fn inside one transaction. A nil accessor means no store is
// wired (unit tests) and fn gets nil.
func runInTx[S any, F any](
	s *RulerService,
	ctx context.Context,
	fn func(ctx context.Context, db tablestore.Accessor) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, func(ctx context.Context, tx tablestore.Accessor) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

func userKey(groupID, userID int64) string {
	return fmt.Sprintf("%d/%d", groupID, userID)
}
