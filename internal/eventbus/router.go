package eventbus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// RouterConfig tunes handler retries.
type RouterConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	CloseTimeout    time.Duration
}

// DefaultRouterConfig is used for zero fields.
var DefaultRouterConfig = RouterConfig{
	MaxRetries:      2,
	InitialInterval: 100 * time.Millisecond,
	CloseTimeout:    10 * time.Second,
}

// NewRouter returns a router with correlation, retry and panic recovery
// middleware installed.
func NewRouter(cfg RouterConfig, logger *slog.Logger) (*message.Router, error) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultRouterConfig.MaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = DefaultRouterConfig.InitialInterval
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = DefaultRouterConfig.CloseTimeout
	}

	wmLogger := watermill.NewSlogLogger(logger)
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.InitialInterval,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)
	return router, nil
}
