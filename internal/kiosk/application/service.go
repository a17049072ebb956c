package application

import (
	"context"
	"strings"
	"sync"

	kiosk "github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

// PurchaseResult is returned by a completed purchase.
type PurchaseResult struct {
	Ticket kiosk.Ticket `json:"ticket"`
	Change int64        `json:"change"`
}

// KioskService drives the single transaction of a kiosk. Calls are serialized,
// every step is logged and completed or cancelled transactions are published
// as events.
type KioskService struct {
	mu      sync.Mutex
	machine *kiosk.Machine
	events  KioskEventBus
	clock   kiosk.Clock
	logger  pkgApp.AppLogger
}

func NewKioskService(machine *kiosk.Machine, events KioskEventBus, clock kiosk.Clock, logger pkgApp.AppLogger) *KioskService {
	if clock == nil {
		clock = kiosk.SystemClock{}
	}
	return &KioskService{
		machine: machine,
		events:  events,
		clock:   clock,
		logger:  logger,
	}
}

func (s *KioskService) Catalog() *kiosk.Catalog {
	return s.machine.Catalog()
}

func (s *KioskService) Snapshot() kiosk.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Snapshot()
}

// apply runs fn under the lock and logs a rejected step.
func (s *KioskService) apply(ctx context.Context, step string, fields map[string]interface{}, fn func(m *kiosk.Machine) error) (kiosk.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.machine); err != nil {
		pkgApp.LogError(ctx, s.logger, "kiosk step rejected", err, withStep(step, fields))
		return s.machine.Snapshot(), err
	}

	snapshot := s.machine.Snapshot()
	f := withStep(step, fields)
	f["state"] = snapshot.State.String()
	f["total_price"] = snapshot.TotalPrice
	pkgApp.LogDebug(ctx, s.logger, "kiosk step applied", f)
	return snapshot, nil
}

func withStep(step string, fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		out[k] = v
	}
	out["step"] = step
	return out
}

func (s *KioskService) SelectCategory(ctx context.Context, category kiosk.TicketCategory) (kiosk.Snapshot, error) {
	return s.apply(ctx, "select_category", map[string]interface{}{"category": category.String()}, func(m *kiosk.Machine) error {
		return m.SelectCategory(category)
	})
}

// SelectOrigin accepts only catalog stations, and never the station already
// chosen as destination.
func (s *KioskService) SelectOrigin(ctx context.Context, name string) (kiosk.Snapshot, error) {
	return s.apply(ctx, "select_origin", map[string]interface{}{"origin": name}, func(m *kiosk.Machine) error {
		origin, ok := m.Catalog().FindOrigin(name)
		if !ok {
			return kiosk.ValidationError{Field: "origin", Msg: "unknown station " + strings.TrimSpace(name)}
		}
		if dest, ok := m.Destination(); ok && strings.EqualFold(dest.Name(), origin) {
			return kiosk.ValidationError{Field: "origin", Msg: "origin and destination must differ"}
		}
		return m.SelectOrigin(origin)
	})
}

// SelectDestination looks name up among the destinations of the selected
// category.
func (s *KioskService) SelectDestination(ctx context.Context, name string) (kiosk.Snapshot, error) {
	return s.apply(ctx, "select_destination", map[string]interface{}{"destination": name}, func(m *kiosk.Machine) error {
		category, ok := m.Category()
		if !ok {
			return kiosk.ValidationError{Field: "destination", Msg: "select a category first"}
		}
		dest, ok := m.Catalog().FindDestination(category, name)
		if !ok {
			return kiosk.ValidationError{Field: "destination", Msg: "no " + category.DisplayName() + " service to " + strings.TrimSpace(name)}
		}
		if origin, ok := m.Origin(); ok && strings.EqualFold(origin, dest.Name()) {
			return kiosk.ValidationError{Field: "destination", Msg: "origin and destination must differ"}
		}
		return m.SelectDestination(dest)
	})
}

func (s *KioskService) SetPassengerCount(ctx context.Context, n int) (kiosk.Snapshot, error) {
	return s.apply(ctx, "set_passengers", map[string]interface{}{"passengers": n}, func(m *kiosk.Machine) error {
		return m.SetPassengerCount(n)
	})
}

func (s *KioskService) SelectClass(ctx context.Context, class kiosk.TravelClass) (kiosk.Snapshot, error) {
	return s.apply(ctx, "select_class", map[string]interface{}{"class": class.String()}, func(m *kiosk.Machine) error {
		return m.SelectClass(class)
	})
}

func (s *KioskService) InsertMoney(ctx context.Context, amount float64) (kiosk.Snapshot, error) {
	return s.apply(ctx, "insert_money", map[string]interface{}{"amount": amount}, func(m *kiosk.Machine) error {
		return m.InsertMoney(amount)
	})
}

// CompletePurchase mints the ticket and publishes TicketPurchased. The sale is
// final once the ledger holds the ticket, so a failed publish is logged and not
// returned.
func (s *KioskService) CompletePurchase(ctx context.Context) (PurchaseResult, error) {
	s.mu.Lock()
	inserted := s.machine.InsertedAmount()
	ticket, change, err := s.machine.CompletePurchase(ctx)
	s.mu.Unlock()

	if err != nil {
		pkgApp.LogError(ctx, s.logger, "purchase not completed", err, map[string]interface{}{"inserted": inserted})
		return PurchaseResult{}, err
	}

	pkgApp.LogInfo(ctx, s.logger, "ticket purchased", map[string]interface{}{
		"ticket_id":   ticket.ID,
		"route":       ticket.Route(),
		"passengers":  ticket.Passengers,
		"total_price": ticket.TotalPrice,
		"change":      change,
	})
	s.publish(ctx, NewTicketPurchasedEvent(ticket, inserted, change, s.clock.Now()))

	return PurchaseResult{Ticket: ticket, Change: change}, nil
}

// Cancel refunds all inserted cash. TransactionCancelled is published unless
// the machine was already idle.
func (s *KioskService) Cancel(ctx context.Context) int64 {
	s.mu.Lock()
	wasIdle := s.machine.State() == kiosk.StateIdle
	refund := s.machine.Cancel()
	s.mu.Unlock()

	pkgApp.LogInfo(ctx, s.logger, "transaction cancelled", map[string]interface{}{"refund": refund})
	if !wasIdle {
		s.publish(ctx, NewTransactionCancelledEvent(refund, s.clock.Now()))
	}
	return refund
}

// Reset restores the defaults. Inserted cash is discarded, not refunded; use
// Cancel to return it.
func (s *KioskService) Reset(ctx context.Context) kiosk.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if discarded := s.machine.InsertedAmount(); discarded > 0 {
		pkgApp.LogInfo(ctx, s.logger, "reset discarded inserted cash", map[string]interface{}{"amount": discarded})
	}
	s.machine.Reset()
	return s.machine.Snapshot()
}

func (s *KioskService) LastTicket(ctx context.Context) (kiosk.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.LastMintedTicket(ctx)
}

func (s *KioskService) publish(ctx context.Context, event pkgDomain.Event[KioskEventData]) {
	if err := s.events.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, s.logger, "error publishing event", err, map[string]interface{}{"event_name": event.EventName()})
	}
}
