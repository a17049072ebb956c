package application

import (
	"context"
	"sync"

	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

// SalesSummary aggregates the kiosk events seen since start-up.
type SalesSummary struct {
	TicketsSold   int   `json:"ticketsSold"`
	Passengers    int   `json:"passengers"`
	Revenue       int64 `json:"revenue"`
	ChangeGiven   int64 `json:"changeGiven"`
	Cancellations int   `json:"cancellations"`
	Refunded      int64 `json:"refunded"`
}

// SalesTally is fed by the event bus, so it reflects whatever transport
// delivered the events.
type SalesTally struct {
	mu      sync.Mutex
	summary SalesSummary
}

func NewSalesTally() *SalesTally {
	return &SalesTally{}
}

func (t *SalesTally) Summary() SalesSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}

func (t *SalesTally) record(name string, data KioskEventData) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch name {
	case TicketPurchasedEventName:
		t.summary.TicketsSold++
		t.summary.Passengers += data.Passengers
		t.summary.Revenue += data.TotalPrice
		t.summary.ChangeGiven += data.Change
	case TransactionCancelledEventName:
		t.summary.Cancellations++
		t.summary.Refunded += data.Refund
	default:
		return false
	}
	return true
}

type salesAuditHandler struct {
	tally  *SalesTally
	logger pkgApp.AppLogger
}

func (h *salesAuditHandler) Handle(ctx context.Context, event pkgDomain.Event[KioskEventData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return ctx.Err()
	}

	data := event.Payload()
	if !h.tally.record(event.EventName(), data) {
		pkgApp.LogDebug(ctx, h.logger, "event ignored", map[string]interface{}{"event_name": event.EventName()})
		return nil
	}

	pkgApp.LogInfo(ctx, h.logger, "event received", map[string]interface{}{
		"event_name": event.EventName(),
		"ticket_id":  data.TicketID,
		"amount":     data.TotalPrice + data.Refund,
	})
	return nil
}

func NewSalesAuditHandler(tally *SalesTally, logger pkgApp.AppLogger) pkgApp.EventHandler[pkgDomain.Event[KioskEventData], KioskEventData] {
	return &salesAuditHandler{
		tally:  tally,
		logger: logger,
	}
}
