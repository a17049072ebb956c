package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
)

// InMemoryTicketLedger keeps minted tickets in purchase order for the lifetime
// of the process.
type InMemoryTicketLedger struct {
	mu     sync.RWMutex
	data   map[string]domain.Ticket
	order  []string
	logger pkgApp.AppLogger
}

func NewInMemoryTicketLedger(logger pkgApp.AppLogger) *InMemoryTicketLedger {
	return &InMemoryTicketLedger{
		data:   make(map[string]domain.Ticket),
		logger: logger,
	}
}

func (r *InMemoryTicketLedger) Append(ctx context.Context, ticket domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[ticket.ID]; exists {
		err := fmt.Errorf("ticket %s already recorded", ticket.ID)
		pkgApp.LogError(ctx, r.logger, "ticket already exists", err, map[string]interface{}{
			"ticket_id": ticket.ID,
		})
		return err
	}

	r.data[ticket.ID] = cloneTicket(ticket)
	r.order = append(r.order, ticket.ID)

	pkgApp.LogInfo(ctx, r.logger, "ticket recorded", map[string]interface{}{
		"ticket_id":   ticket.ID,
		"total_price": ticket.TotalPrice,
	})
	return nil
}

func (r *InMemoryTicketLedger) FindByID(ctx context.Context, id string) (domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, exists := r.data[id]
	if !exists {
		pkgApp.LogDebug(ctx, r.logger, "ticket not found", map[string]interface{}{
			"ticket_id": id,
		})
		return domain.Ticket{}, domain.NotFoundError{Resource: "ticket", ID: id}
	}
	return cloneTicket(ticket), nil
}

func (r *InMemoryTicketLedger) List(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tickets := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		tickets = append(tickets, cloneTicket(r.data[id]))
	}
	return tickets, nil
}

func (r *InMemoryTicketLedger) Last(ctx context.Context) (domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return domain.Ticket{}, domain.NotFoundError{Resource: "ticket", ID: "last"}
	}
	return cloneTicket(r.data[r.order[len(r.order)-1]]), nil
}

// Len is the number of recorded tickets.
func (r *InMemoryTicketLedger) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// cloneTicket copies the seat slice so callers cannot mutate recorded tickets.
func cloneTicket(t domain.Ticket) domain.Ticket {
	t.Seats = append([]string(nil), t.Seats...)
	return t
}
