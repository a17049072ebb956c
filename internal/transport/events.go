// Package transport builds the event bus for the configured watermill Pub/Sub.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/ticket-kiosk/internal/config"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/application"
	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
	pkgInfra "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure"
	channelAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/channels/adapter"
	kafkaAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/redis/adapter"
	watermillAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/watermill/adapter"
)

// EventBus is the kiosk event bus together with the resources it owns.
type EventBus struct {
	application.KioskEventBus

	Transport config.EventTransport
	closers   []func() error
}

// Close stops the consumers first, then releases the transport.
func (b *EventBus) Close() error {
	var errs []error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewEventBus(ctx context.Context, cfg config.Config, logger pkgApp.AppLogger) (*EventBus, error) {
	var (
		publisher  message.Publisher
		subscriber message.Subscriber
		closers    []func() error
	)

	switch cfg.Events {
	case config.TransportChannel, "":
		pubSub := channelAdapter.NewGoChannelPubSub(logger)
		publisher, subscriber = pubSub, pubSub
		closers = append(closers, pubSub.Close)

	case config.TransportRedis:
		client := redisAdapter.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pub, sub, err := redisAdapter.NewRedisStreamPubSub(client, cfg.ConsumerGroup, consumerName(cfg), logger)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis event transport: %w", err)
		}
		publisher, subscriber = pub, sub
		closers = append(closers, sub.Close, pub.Close, client.Close)

	case config.TransportKafka:
		pub, sub, err := kafkaAdapter.NewKafkaPubSub(cfg.KafkaBrokers, cfg.ConsumerGroup, consumerName(cfg), logger)
		if err != nil {
			return nil, fmt.Errorf("kafka event transport: %w", err)
		}
		publisher, subscriber = pub, sub
		closers = append(closers, sub.Close, pub.Close)

	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Events)
	}

	bus := watermillAdapter.NewWatermillEventBus[pkgDomain.Event[application.KioskEventData], application.KioskEventData](publisher, subscriber, logger)

	pkgApp.LogInfo(ctx, logger, "event transport ready", map[string]interface{}{
		"transport": string(cfg.Events),
	})

	return &EventBus{
		KioskEventBus: bus,
		Transport:     cfg.Events,
		closers:       append([]func() error{bus.Close}, closers...),
	}, nil
}

// consumerName identifies this process inside the consumer group.
func consumerName(cfg config.Config) string {
	return cfg.AppName + "-" + pkgInfra.GenerateUUID()
}
