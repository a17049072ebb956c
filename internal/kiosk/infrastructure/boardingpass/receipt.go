package boardingpass

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
)

// ReceiptFileName is the conventional name of the printed receipt.
func ReceiptFileName(ticketID string) string {
	return "Receipt_" + ticketID + ".pdf"
}

// ReceiptRenderer prints the purchase receipt on a single A4 page.
type ReceiptRenderer struct{}

func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

func (r *ReceiptRenderer) Render(ticket domain.Ticket) ([]byte, error) {
	if ticket.ID == "" {
		return nil, domain.ValidationError{Field: "ticket", Msg: "ticket id is required"}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+ticket.ID, false)
	pdf.SetCreationDate(ticket.PurchasedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "BOARDING PASS", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", strings.ToUpper(ticket.Category.DisplayName()), ticket.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, tr(ticket.Origin+"  -->  "+ticket.Destination.Name()))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)

	rows := [][2]string{
		{"Date", ticket.FormattedDate()},
		{"Departure", ticket.FormattedDeparture()},
		{"Arrival", ticket.FormattedArrival()},
		{"Duration", ticket.FormattedDuration()},
		{"Passenger(s)", fmt.Sprintf("%d Adult(s)", ticket.Passengers)},
		{"Class", ticket.Class.String()},
		{"Seat(s)", strings.Join(ticket.Seats, ", ")},
		{"Fare per Ticket", domain.FormatPKR(ticket.UnitPrice)},
	}
	for _, row := range rows {
		pdf.CellFormat(45, 7, row[0]+":", "", 0, "", false, 0, "")
		pdf.CellFormat(0, 7, tr(row[1]), "", 1, "", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(45, 9, "TOTAL FARE:", "T", 0, "", false, 0, "")
	pdf.CellFormat(0, 9, domain.FormatPKR(ticket.TotalPrice), "T", 1, "", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, footerText, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, domain.IOError{Op: "render receipt", Err: err}
	}
	return buf.Bytes(), nil
}

func (r *ReceiptRenderer) Write(w io.Writer, ticket domain.Ticket) error {
	data, err := r.Render(ticket)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return domain.IOError{Op: "write receipt", Err: err}
	}
	return nil
}
