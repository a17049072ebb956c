package kiosk

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/application"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure/boardingpass"
	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
	pkgInfra "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/zaplogger/adapter"
)

// Options carries what the slice needs from the binary that hosts it.
type Options struct {
	ExportBus application.ExportCommandBus
	FindBus   application.FindTicketQueryBus
	ListBus   application.ListTicketsQueryBus
	EventBus  application.KioskEventBus

	Catalog    *domain.Catalog
	Factory    *domain.TicketFactory
	Ledger     domain.TicketLedger
	Serializer *boardingpass.Serializer
	Clock      domain.Clock
	ExportDir  string
	Logger     pkgApp.AppLogger
}

type KioskSlice struct {
	service     *application.KioskService
	tally       *application.SalesTally
	httpHandler *infrastructure.KioskHTTPHandler
}

// NewKioskSlice fills every missing collaborator with its in-process default.
func NewKioskSlice(opts Options) *KioskSlice {
	if opts.Logger == nil {
		opts.Logger = zapAdapter.NewZapAppLoggerFrom(zap.NewNop())
	}
	if opts.ExportBus == nil {
		opts.ExportBus = pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.ExportBoardingPassData], application.ExportBoardingPassData](opts.Logger)
	}
	if opts.FindBus == nil {
		opts.FindBus = pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindTicketData], application.FindTicketData, domain.Ticket](opts.Logger)
	}
	if opts.ListBus == nil {
		opts.ListBus = pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.ListTicketsData], application.ListTicketsData, []domain.Ticket](opts.Logger)
	}
	if opts.EventBus == nil {
		opts.EventBus = pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.KioskEventData], application.KioskEventData](opts.Logger)
	}
	if opts.Catalog == nil {
		opts.Catalog = domain.DefaultCatalog()
	}
	if opts.Factory == nil {
		opts.Factory = domain.NewTicketFactory()
	}
	if opts.Ledger == nil {
		opts.Ledger = infrastructure.NewInMemoryTicketLedger(opts.Logger)
	}
	if opts.Serializer == nil {
		opts.Serializer = boardingpass.NewSerializer()
	}

	machine := domain.NewMachine(opts.Catalog, opts.Factory, opts.Ledger)
	service := application.NewKioskService(machine, opts.EventBus, opts.Clock, opts.Logger)
	tally := application.NewSalesTally()

	exportHandler := application.NewExportBoardingPassHandler(opts.Ledger, opts.Serializer, opts.Logger)
	findHandler := application.NewFindTicketHandler(opts.Ledger, opts.Logger)
	listHandler := application.NewListTicketsHandler(opts.Ledger, opts.Logger)
	auditHandler := application.NewSalesAuditHandler(tally, opts.Logger)

	opts.ExportBus.RegisterHandler(application.ExportBoardingPassCommandName, exportHandler)
	opts.FindBus.RegisterHandler(application.FindTicketQueryName, findHandler)
	opts.ListBus.RegisterHandler(application.ListTicketsQueryName, listHandler)
	opts.EventBus.RegisterHandler(application.TicketPurchasedEventName, auditHandler)
	opts.EventBus.RegisterHandler(application.TransactionCancelledEventName, auditHandler)

	httpHandler := infrastructure.NewKioskHTTPHandler(infrastructure.KioskHTTPHandlerConfig{
		Service:   service,
		FindBus:   opts.FindBus,
		ListBus:   opts.ListBus,
		ExportBus: opts.ExportBus,
		Passes:    opts.Serializer,
		Receipts:  boardingpass.NewReceiptRenderer(),
		Tally:     tally,
		ExportDir: opts.ExportDir,
		Logger:    opts.Logger,
	})

	return &KioskSlice{
		service:     service,
		tally:       tally,
		httpHandler: httpHandler,
	}
}

func (s *KioskSlice) Service() *application.KioskService { return s.service }
func (s *KioskSlice) Sales() application.SalesSummary    { return s.tally.Summary() }

func (s *KioskSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
