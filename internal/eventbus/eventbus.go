// Package eventbus builds the watermill publisher, subscriber and router the
// bot runs on. Core NATS is used when a URL is configured, otherwise an
// in-process channel bus.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus is a publisher and subscriber pair sharing one lifecycle.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// Config selects and tunes the transport.
type Config struct {
	NATSURL string
	// Name identifies the NATS connection and prefixes queue groups so
	// replicas of the bot share command subjects.
	Name string
}

const (
	defaultName       = "ruler-bot"
	connectTimeout    = 30 * time.Second
	reconnectWait     = 1 * time.Second
	subscriberTimeout = 30 * time.Second
)

// New returns a NATS backed bus, or a channel bus when cfg.NATSURL is empty.
func New(cfg Config, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	if cfg.NATSURL == "" {
		return NewInMemory(wmLogger), nil
	}
	return newNATS(cfg, wmLogger)
}

// NewInMemory returns a channel bus. Messages published before a subscriber
// exists are dropped.
func NewInMemory(logger watermill.LoggerAdapter) EventBus {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
}

type natsBus struct {
	*nats.Publisher
	subscriber *nats.Subscriber
}

func (b *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *natsBus) Close() error {
	return errors.Join(b.Publisher.Close(), b.subscriber.Close())
}

func newNATS(cfg Config, logger watermill.LoggerAdapter) (*natsBus, error) {
	name := cfg.Name
	if name == "" {
		name = defaultName
	}

	options := []nc.Option{
		nc.Name(name),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(connectTimeout),
		nc.ReconnectWait(reconnectWait),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("Error in subscription", err, watermill.LogFields{
					"subject": s.Subject,
					"queue":   s.Queue,
				})
			} else {
				logger.Error("Error in connection", err, nil)
			}
		}),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.NATSURL,
			NatsOptions: options,
			Marshaler:   &nats.NATSMarshaler{},
			JetStream:   nats.JetStreamConfig{Disabled: true},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.NATSURL,
			QueueGroupPrefix: name,
			SubscribersCount: 1,
			CloseTimeout:     subscriberTimeout,
			SubscribeTimeout: subscriberTimeout,
			NatsOptions:      options,
			Unmarshaler:      &nats.NATSMarshaler{},
			JetStream:        nats.JetStreamConfig{Disabled: true},
		},
		logger,
	)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &natsBus{Publisher: publisher, subscriber: subscriber}, nil
}
