package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/mateusmacedo/ticket-kiosk/pkg/domain"
	zapAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/zaplogger/adapter"
)

type purchased struct {
	TicketID string `json:"ticketId"`
	Total    int64  `json:"total"`
}

type purchasedEvent struct {
	data purchased
}

func (e purchasedEvent) EventName() string  { return "TicketPurchased" }
func (e purchasedEvent) Payload() purchased { return e.data }

type purchasedHandler func(context.Context, domain.Event[purchased]) error

func (f purchasedHandler) Handle(ctx context.Context, e domain.Event[purchased]) error { return f(ctx, e) }

func TestWatermillEventBusDeliversOverGoChannel(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zap.NewNop())
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, NewWatermillLoggerAdapter(logger))
	defer pubSub.Close()

	bus := NewWatermillEventBus[domain.Event[purchased], purchased](pubSub, pubSub, logger)
	defer bus.Close()

	received := make(chan purchased, 1)
	bus.RegisterHandler("TicketPurchased", purchasedHandler(
		func(_ context.Context, e domain.Event[purchased]) error {
			received <- e.Payload()
			return nil
		}))

	want := purchased{TicketID: "PK0007", Total: 11550}
	if err := bus.Publish(context.Background(), purchasedEvent{data: want}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got != want {
			t.Fatalf("received %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event was not delivered")
	}
}

func TestWatermillEventBusSkipsUndecodablePayloads(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zap.NewNop())
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, NewWatermillLoggerAdapter(logger))
	defer pubSub.Close()

	bus := NewWatermillEventBus[domain.Event[purchased], purchased](pubSub, pubSub, logger)
	defer bus.Close()

	received := make(chan purchased, 2)
	bus.RegisterHandler("TicketPurchased", purchasedHandler(func(_ context.Context, e domain.Event[purchased]) error {
		received <- e.Payload()
		return nil
	}))

	if err := pubSub.Publish("TicketPurchased", message.NewMessage(watermill.NewUUID(), []byte("{not json"))); err != nil {
		t.Fatalf("Publish raw: %v", err)
	}
	want := purchased{TicketID: "PK0008", Total: 4620}
	if err := bus.Publish(context.Background(), purchasedEvent{data: want}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got != want {
			t.Fatalf("received %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("valid event was not delivered after a broken one")
	}
}
