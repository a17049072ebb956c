package application

import (
	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
	"github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

const ExportBoardingPassCommandName = "ExportBoardingPass"

// ExportBoardingPassData identifies the ticket to export and where to write it.
type ExportBoardingPassData struct {
	TicketID string `json:"ticketId"`
	Path     string `json:"path"`
}

type exportBoardingPassCommand struct {
	data ExportBoardingPassData
}

func (c exportBoardingPassCommand) CommandName() string {
	return ExportBoardingPassCommandName
}

func (c exportBoardingPassCommand) Payload() ExportBoardingPassData {
	return c.data
}

func NewExportBoardingPassCommand(data ExportBoardingPassData) domain.Command[ExportBoardingPassData] {
	return exportBoardingPassCommand{data: data}
}

type ExportCommandBus = application.CommandBus[domain.Command[ExportBoardingPassData], ExportBoardingPassData]
