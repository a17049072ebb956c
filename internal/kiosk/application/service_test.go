package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/application"
	kiosk "github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
	pkgInfra "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/zaplogger/adapter"
)

var (
	testNow   = time.Date(2026, 10, 15, 10, 12, 0, 0, time.UTC)
	nopLogger = zapAdapter.NewZapAppLoggerFrom(zap.NewNop())
)

type fixture struct {
	service *application.KioskService
	ledger  *infrastructure.InMemoryTicketLedger
	tally   *application.SalesTally
	events  *recordingHandler
}

type recordingHandler struct {
	mu     sync.Mutex
	events []pkgDomain.Event[application.KioskEventData]
}

func (h *recordingHandler) Handle(_ context.Context, event pkgDomain.Event[application.KioskEventData]) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.events))
	for i, e := range h.events {
		names[i] = e.EventName()
	}
	return names
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := nopLogger
	clock := kiosk.ClockFunc(func() time.Time { return testNow })

	ledger := infrastructure.NewInMemoryTicketLedger(logger)
	factory := kiosk.NewTicketFactory(kiosk.WithCounter(&kiosk.TicketCounter{}), kiosk.WithClock(clock))
	machine := kiosk.NewMachine(kiosk.DefaultCatalog(), factory, ledger)

	bus := pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.KioskEventData], application.KioskEventData](logger)
	tally := application.NewSalesTally()
	recorder := &recordingHandler{}
	for _, name := range []string{application.TicketPurchasedEventName, application.TransactionCancelledEventName} {
		bus.RegisterHandler(name, application.NewSalesAuditHandler(tally, logger))
		bus.RegisterHandler(name, recorder)
	}

	return &fixture{
		service: application.NewKioskService(machine, bus, clock, logger),
		ledger:  ledger,
		tally:   tally,
		events:  recorder,
	}
}

func (f *fixture) selectTrip(t *testing.T, origin, destination string, passengers int) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.service.SelectCategory(ctx, kiosk.CategoryRail); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	if _, err := f.service.SelectOrigin(ctx, origin); err != nil {
		t.Fatalf("SelectOrigin: %v", err)
	}
	if _, err := f.service.SelectDestination(ctx, destination); err != nil {
		t.Fatalf("SelectDestination: %v", err)
	}
	if _, err := f.service.SetPassengerCount(ctx, passengers); err != nil {
		t.Fatalf("SetPassengerCount: %v", err)
	}
}

func TestKioskServicePurchasePublishesEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectTrip(t, "lahore", "Islamabad", 2)

	snap := f.service.Snapshot()
	if snap.Origin != "Lahore" || snap.TotalPrice != 11550 || snap.State != kiosk.StatePriced {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	for _, note := range []float64{5000, 5000, 1000, 500} {
		if _, err := f.service.InsertMoney(ctx, note); err != nil {
			t.Fatalf("InsertMoney: %v", err)
		}
	}
	if _, err := f.service.CompletePurchase(ctx); !errors.Is(err, kiosk.ErrIncompletePurchase) {
		t.Fatalf("expected incomplete purchase, got %v", err)
	}
	if _, err := f.service.InsertMoney(ctx, 100); err != nil {
		t.Fatalf("InsertMoney: %v", err)
	}

	result, err := f.service.CompletePurchase(ctx)
	if err != nil {
		t.Fatalf("CompletePurchase: %v", err)
	}
	if result.Change != 50 || result.Ticket.ID != "PK0001" {
		t.Fatalf("unexpected result %+v", result)
	}

	last, err := f.service.LastTicket(ctx)
	if err != nil || last.ID != "PK0001" {
		t.Fatalf("LastTicket = %v, %v", last.ID, err)
	}
	if f.ledger.Len() != 1 {
		t.Fatalf("ledger holds %d tickets", f.ledger.Len())
	}

	if names := f.events.names(); len(names) != 1 || names[0] != application.TicketPurchasedEventName {
		t.Fatalf("events = %v", names)
	}
	payload := f.events.events[0].Payload()
	if payload.Inserted != 11600 || payload.Change != 50 || payload.TotalPrice != 11550 || !payload.OccurredAt.Equal(testNow) {
		t.Fatalf("unexpected payload %+v", payload)
	}

	summary := f.tally.Summary()
	if summary.TicketsSold != 1 || summary.Passengers != 2 || summary.Revenue != 11550 || summary.ChangeGiven != 50 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestKioskServiceCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if refund := f.service.Cancel(ctx); refund != 0 {
		t.Fatalf("idle cancel refunded %d", refund)
	}
	if len(f.events.names()) != 0 {
		t.Fatal("idle cancel must not publish")
	}

	f.selectTrip(t, "Karachi", "Quetta", 1)
	_, _ = f.service.InsertMoney(ctx, 1000)
	_, _ = f.service.InsertMoney(ctx, 500)

	if refund := f.service.Cancel(ctx); refund != 1500 {
		t.Fatalf("refund = %d", refund)
	}
	if snap := f.service.Snapshot(); snap.State != kiosk.StateIdle || snap.InsertedAmount != 0 {
		t.Fatalf("not reset: %+v", snap)
	}

	summary := f.tally.Summary()
	if summary.Cancellations != 1 || summary.Refunded != 1500 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestKioskServiceSelectionRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.SelectDestination(ctx, "Islamabad"); !kiosk.IsValidation(err) {
		t.Fatalf("destination before category: %v", err)
	}
	_, _ = f.service.SelectCategory(ctx, kiosk.CategoryRoad)

	if _, err := f.service.SelectOrigin(ctx, "Atlantis"); !kiosk.IsValidation(err) {
		t.Fatalf("unknown origin: %v", err)
	}
	if _, err := f.service.SelectDestination(ctx, "Islamabad"); !kiosk.IsValidation(err) {
		t.Fatalf("Islamabad has no road service: %v", err)
	}

	_, _ = f.service.SelectOrigin(ctx, "Multan")
	if _, err := f.service.SelectDestination(ctx, "multan"); !kiosk.IsValidation(err) {
		t.Fatalf("destination equal to origin: %v", err)
	}

	_, _ = f.service.SelectOrigin(ctx, "Lahore")
	_, _ = f.service.SelectDestination(ctx, "Multan")
	if _, err := f.service.SelectOrigin(ctx, "Multan"); !kiosk.IsValidation(err) {
		t.Fatalf("origin equal to destination: %v", err)
	}

	snap, err := f.service.SetPassengerCount(ctx, 11)
	if !errors.Is(err, kiosk.ErrOutOfRange) || snap.PassengerCount != 1 {
		t.Fatalf("SetPassengerCount(11) = %d, %v", snap.PassengerCount, err)
	}
	if _, err := f.service.InsertMoney(ctx, -5); !kiosk.IsPayment(err) {
		t.Fatalf("negative cash: %v", err)
	}

	snap, err = f.service.SelectClass(ctx, kiosk.ClassACSleeper)
	if err != nil || snap.UnitPrice != 8544 {
		t.Fatalf("SelectClass = %+v, %v", snap, err)
	}

	snap = f.service.Reset(ctx)
	if snap.State != kiosk.StateIdle || snap.TravelClass != kiosk.ClassEconomy {
		t.Fatalf("Reset = %+v", snap)
	}
}

func TestKioskServiceConcurrentSessionsSerialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectTrip(t, "Lahore", "Faisalabad", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.service.InsertMoney(ctx, 100)
		}()
	}
	wg.Wait()

	if got := f.service.Snapshot().InsertedAmount; got != 5000 {
		t.Fatalf("inserted = %d, want 5000", got)
	}
}
