package adapter

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
	watermillAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/watermill/adapter"
)

// NewGoChannelPubSub cria o transporte em memória usado quando nenhum broker está
// configurado. O mesmo valor serve como publisher e subscriber.
func NewGoChannelPubSub(logger application.AppLogger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))
}
