// Command simulate runs one scripted kiosk purchase and exports its boarding
// pass and receipt.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/mateusmacedo/ticket-kiosk/internal/config"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/application"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure/boardingpass"
	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
	pkgInfra "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/zaplogger/adapter"
)

type script struct {
	category    string
	origin      string
	destination string
	passengers  int
	class       string
	cash        []float64
	seed        uint64
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var s script
	flagSet := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
	flagSet.StringVar(&s.category, "category", "rail", "rail or road")
	flagSet.StringVar(&s.origin, "origin", "Lahore", "origin station")
	flagSet.StringVar(&s.destination, "destination", "Islamabad", "destination station")
	flagSet.IntVar(&s.passengers, "passengers", 1, "number of passengers (1-10)")
	flagSet.StringVar(&s.class, "class", "Economy", "travel class")
	flagSet.Float64SliceVar(&s.cash, "cash", nil, "notes to insert; quick-cash notes covering the fare when empty")
	flagSet.Uint64Var(&s.seed, "seed", 0, "seed for seats and barcodes; 0 picks a random seed")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flagSet.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory the documents are written to")
	flagSet.StringVar(&cfg.TicketPrefix, "ticket-prefix", cfg.TicketPrefix, "two upper-case letters prefixed to ticket ids")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	appLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{AppName: cfg.AppName + "-simulate", Level: cfg.LogLevel})
	if err != nil {
		return err
	}

	seed := s.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	ctx := pkgApp.WithRequestID(context.Background(), pkgInfra.GenerateUUID())
	pkgApp.LogInfo(ctx, appLogger, "simulation started", map[string]interface{}{"seed": seed})

	ledger := infrastructure.NewInMemoryTicketLedger(appLogger)
	factory := domain.NewTicketFactory(
		domain.WithPrefix(cfg.TicketPrefix),
		domain.WithRandom(rand.New(rand.NewPCG(seed, 1))),
	)
	events := pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.KioskEventData], application.KioskEventData](appLogger)
	tally := application.NewSalesTally()
	events.RegisterHandler(application.TicketPurchasedEventName, application.NewSalesAuditHandler(tally, appLogger))

	service := application.NewKioskService(domain.NewMachine(domain.DefaultCatalog(), factory, ledger), events, nil, appLogger)

	result, err := purchase(ctx, service, s)
	if err != nil {
		if refund := service.Cancel(ctx); refund > 0 {
			fmt.Printf("Refunded %s\n", domain.FormatPKR(refund))
		}
		return err
	}

	fmt.Println(result.Ticket.Receipt())
	fmt.Printf("Change: %s\n", domain.FormatPKR(result.Change))

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return domain.IOError{Op: "create export dir", Path: cfg.ExportDir, Err: err}
	}

	serializer := boardingpass.NewSerializer(boardingpass.WithRandom(rand.New(rand.NewPCG(seed, 2))))
	passPath := filepath.Join(cfg.ExportDir, boardingpass.FileName(result.Ticket.ID))
	if err := serializer.WriteFile(passPath, result.Ticket); err != nil {
		pkgApp.LogError(ctx, appLogger, "error exporting boarding pass", err, map[string]interface{}{"path": passPath})
		return err
	}

	var receipt bytes.Buffer
	if err := boardingpass.NewReceiptRenderer().Write(&receipt, result.Ticket); err != nil {
		return err
	}
	receiptPath := filepath.Join(cfg.ExportDir, boardingpass.ReceiptFileName(result.Ticket.ID))
	if err := os.WriteFile(receiptPath, receipt.Bytes(), 0o644); err != nil {
		return domain.IOError{Op: "write receipt", Path: receiptPath, Err: err}
	}

	pkgApp.LogInfo(ctx, appLogger, "simulation finished", map[string]interface{}{
		"boarding_pass": passPath,
		"receipt":       receiptPath,
		"revenue":       tally.Summary().Revenue,
	})
	fmt.Printf("Boarding pass: %s\nReceipt: %s\n", passPath, receiptPath)
	return nil
}

func purchase(ctx context.Context, service *application.KioskService, s script) (application.PurchaseResult, error) {
	category, err := domain.ParseTicketCategory(s.category)
	if err != nil {
		return application.PurchaseResult{}, err
	}
	class, err := domain.ParseTravelClass(s.class)
	if err != nil {
		return application.PurchaseResult{}, err
	}

	steps := []func() (domain.Snapshot, error){
		func() (domain.Snapshot, error) { return service.SelectCategory(ctx, category) },
		func() (domain.Snapshot, error) { return service.SelectOrigin(ctx, s.origin) },
		func() (domain.Snapshot, error) { return service.SelectDestination(ctx, s.destination) },
		func() (domain.Snapshot, error) { return service.SetPassengerCount(ctx, s.passengers) },
		func() (domain.Snapshot, error) { return service.SelectClass(ctx, class) },
	}
	var snapshot domain.Snapshot
	for _, step := range steps {
		if snapshot, err = step(); err != nil {
			return application.PurchaseResult{}, err
		}
	}
	fmt.Printf("Fare: %s x %d = %s\n", domain.FormatPKR(snapshot.UnitPrice), snapshot.PassengerCount, domain.FormatPKR(snapshot.TotalPrice))

	cash := s.cash
	if len(cash) == 0 {
		for _, note := range domain.NotesFor(snapshot.TotalPrice) {
			cash = append(cash, float64(note))
		}
	}
	for _, amount := range cash {
		snapshot, err = service.InsertMoney(ctx, amount)
		if err != nil {
			return application.PurchaseResult{}, err
		}
		fmt.Printf("Inserted %s, remaining %s\n", domain.FormatPKR(int64(amount)), domain.FormatPKR(snapshot.RemainingDue))
	}

	return service.CompletePurchase(ctx)
}
