package adapter

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
	watermillAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/watermill/adapter"
)

// NewRedisStreamPubSub cria publisher e subscriber sobre Redis streams. O chamador
// é responsável por fechar ambos.
func NewRedisStreamPubSub(client redis.UniversalClient, consumerGroup, consumer string, logger application.AppLogger) (*redisstream.Publisher, *redisstream.Subscriber, error) {
	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, wmLogger)
	if err != nil {
		return nil, nil, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: consumerGroup,
		Consumer:      consumer,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, nil, err
	}

	return publisher, subscriber, nil
}
