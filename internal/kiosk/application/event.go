package application

import (
	"time"

	kiosk "github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
	"github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

const (
	TicketPurchasedEventName      = "TicketPurchased"
	TransactionCancelledEventName = "TransactionCancelled"
)

// KioskEventData is the JSON payload shared by every kiosk event, whatever the
// transport.
type KioskEventData struct {
	TicketID    string    `json:"ticketId,omitempty"`
	Category    string    `json:"category,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Passengers  int       `json:"passengers,omitempty"`
	Class       string    `json:"class,omitempty"`
	TotalPrice  int64     `json:"totalPrice,omitempty"`
	Inserted    int64     `json:"inserted"`
	Change      int64     `json:"change,omitempty"`
	Refund      int64     `json:"refund,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type kioskEvent struct {
	name string
	data KioskEventData
}

func (e kioskEvent) EventName() string {
	return e.name
}

func (e kioskEvent) Payload() KioskEventData {
	return e.data
}

func NewTicketPurchasedEvent(ticket kiosk.Ticket, inserted, change int64, at time.Time) domain.Event[KioskEventData] {
	return kioskEvent{
		name: TicketPurchasedEventName,
		data: KioskEventData{
			TicketID:    ticket.ID,
			Category:    ticket.Category.String(),
			Origin:      ticket.Origin,
			Destination: ticket.Destination.Name(),
			Passengers:  ticket.Passengers,
			Class:       ticket.Class.String(),
			TotalPrice:  ticket.TotalPrice,
			Inserted:    inserted,
			Change:      change,
			OccurredAt:  at,
		},
	}
}

func NewTransactionCancelledEvent(refund int64, at time.Time) domain.Event[KioskEventData] {
	return kioskEvent{
		name: TransactionCancelledEventName,
		data: KioskEventData{
			Inserted:   refund,
			Refund:     refund,
			OccurredAt: at,
		},
	}
}

type KioskEventBus = application.EventBus[domain.Event[KioskEventData], KioskEventData]
