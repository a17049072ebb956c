package application

import (
	"context"
	"strings"

	kiosk "github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

// DocumentWriter writes a ticket document to a file.
type DocumentWriter interface {
	WriteFile(path string, ticket kiosk.Ticket) error
}

type exportBoardingPassHandler struct {
	ledger kiosk.TicketLedger
	writer DocumentWriter
	logger pkgApp.AppLogger
}

func (h *exportBoardingPassHandler) Handle(ctx context.Context, command pkgDomain.Command[ExportBoardingPassData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	if strings.TrimSpace(data.Path) == "" {
		return kiosk.ValidationError{Field: "path", Msg: "output path is required"}
	}

	ticket, err := h.ledger.FindByID(ctx, data.TicketID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error loading ticket for export", err, map[string]interface{}{"ticket_id": data.TicketID})
		return err
	}

	if err := h.writer.WriteFile(data.Path, ticket); err != nil {
		pkgApp.LogError(ctx, h.logger, "error exporting boarding pass", err, map[string]interface{}{
			"ticket_id": data.TicketID,
			"path":      data.Path,
		})
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "boarding pass exported", map[string]interface{}{
		"ticket_id": data.TicketID,
		"path":      data.Path,
		"pages":     ticket.Passengers,
	})
	return nil
}

func NewExportBoardingPassHandler(ledger kiosk.TicketLedger, writer DocumentWriter, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[ExportBoardingPassData], ExportBoardingPassData] {
	return &exportBoardingPassHandler{
		ledger: ledger,
		writer: writer,
		logger: logger,
	}
}

type findTicketHandler struct {
	ledger kiosk.TicketLedger
	logger pkgApp.AppLogger
}

func (h *findTicketHandler) Handle(ctx context.Context, query pkgDomain.Query[FindTicketData]) (kiosk.Ticket, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return kiosk.Ticket{}, ctx.Err()
	}

	id := strings.TrimSpace(query.Payload().TicketID)
	ticket, err := h.ledger.FindByID(ctx, id)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error finding ticket", err, map[string]interface{}{"ticket_id": id})
		return kiosk.Ticket{}, err
	}

	pkgApp.LogDebug(ctx, h.logger, "ticket found", map[string]interface{}{"ticket_id": id})
	return ticket, nil
}

func NewFindTicketHandler(ledger kiosk.TicketLedger, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindTicketData], FindTicketData, kiosk.Ticket] {
	return &findTicketHandler{
		ledger: ledger,
		logger: logger,
	}
}

type listTicketsHandler struct {
	ledger kiosk.TicketLedger
	logger pkgApp.AppLogger
}

func (h *listTicketsHandler) Handle(ctx context.Context, query pkgDomain.Query[ListTicketsData]) ([]kiosk.Ticket, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return nil, ctx.Err()
	}

	all, err := h.ledger.List(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "error listing tickets", err, nil)
		return nil, err
	}

	filter := query.Payload()
	tickets := make([]kiosk.Ticket, 0, len(all))
	for _, t := range all {
		if filter.Category.Valid() && t.Category != filter.Category {
			continue
		}
		if filter.Origin != "" && !strings.EqualFold(t.Origin, strings.TrimSpace(filter.Origin)) {
			continue
		}
		tickets = append(tickets, t)
	}

	pkgApp.LogDebug(ctx, h.logger, "tickets listed", map[string]interface{}{"count": len(tickets)})
	return tickets, nil
}

func NewListTicketsHandler(ledger kiosk.TicketLedger, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[ListTicketsData], ListTicketsData, []kiosk.Ticket] {
	return &listTicketsHandler{
		ledger: ledger,
		logger: logger,
	}
}
