package application

import (
	kiosk "github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
	"github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

const (
	FindTicketQueryName  = "FindTicket"
	ListTicketsQueryName = "ListTickets"
)

type FindTicketData struct {
	TicketID string
}

type findTicketQuery struct {
	data FindTicketData
}

func (q findTicketQuery) QueryName() string {
	return FindTicketQueryName
}

func (q findTicketQuery) Payload() FindTicketData {
	return q.data
}

func NewFindTicketQuery(data FindTicketData) domain.Query[FindTicketData] {
	return findTicketQuery{data: data}
}

// ListTicketsData filters the ledger. An empty field matches everything.
type ListTicketsData struct {
	Category kiosk.TicketCategory
	Origin   string
}

type listTicketsQuery struct {
	data ListTicketsData
}

func (q listTicketsQuery) QueryName() string {
	return ListTicketsQueryName
}

func (q listTicketsQuery) Payload() ListTicketsData {
	return q.data
}

func NewListTicketsQuery(data ListTicketsData) domain.Query[ListTicketsData] {
	return listTicketsQuery{data: data}
}

type (
	FindTicketQueryBus  = application.QueryBus[domain.Query[FindTicketData], FindTicketData, kiosk.Ticket]
	ListTicketsQueryBus = application.QueryBus[domain.Query[ListTicketsData], ListTicketsData, []kiosk.Ticket]
)
