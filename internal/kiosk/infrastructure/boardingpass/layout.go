package boardingpass

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
)

const (
	pageWidth  = 400
	pageHeight = 600
	margin     = 30
	centerX    = pageWidth / 2

	barcodeBars   = 40
	barcodeHeight = 40
	barcodeSpace  = 2
	barcodeDigits = 99999

	footerText = "Thank you for traveling with us!"
)

// Fill colours used on the page.
const (
	brandBlue = "0.180 0.357 1.000"
	white     = "1 1 1"
	black     = "0 0 0"
	darkGrey  = "0.4 0.4 0.4"
	lightGrey = "0.6 0.6 0.6"
	ink       = "0.1 0.1 0.1"
	rule      = "0.9 0.9 0.9"
)

var textEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// escapeText escapes the characters that delimit a literal string.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// contentStream accumulates the drawing operators of one page.
type contentStream struct {
	buf bytes.Buffer
}

func (c *contentStream) op(format string, args ...interface{}) {
	fmt.Fprintf(&c.buf, format, args...)
	c.buf.WriteByte('\n')
}

// text writes one BT/ET block. Empty colour or a zero size keeps the current
// graphics state value.
func (c *contentStream) text(color string, size, x, y int, s string) {
	c.op("BT")
	if color != "" {
		c.op("%s rg", color)
	}
	if size > 0 {
		c.op("/F1 %d Tf", size)
	}
	c.op("%d %d Td", x, y)
	c.op("(%s) Tj", escapeText(s))
	c.op("ET")
}

func (c *contentStream) label(s string, x, y int) {
	c.text(lightGrey, 9, x, y, s)
}

func (c *contentStream) value(s string, x, y int) {
	c.text(black, 12, x, y, s)
}

// barcodeWidth is the width of bar i: 3 on multiples of three, otherwise 2 on
// even indexes and 1 on odd ones.
func barcodeWidth(i int) int {
	switch {
	case i%3 == 0:
		return 3
	case i%2 == 0:
		return 2
	default:
		return 1
	}
}

// pageContent draws the boarding pass of passenger n (1-based). code is the
// number printed under the barcode.
func pageContent(ticket domain.Ticket, n int, code int) string {
	var c contentStream
	top := pageHeight - margin
	passengerCode := ticket.PassengerCode(n)

	c.op("q")
	c.op("%s rg", brandBlue)
	c.op("0 %d %d 150 re f", pageHeight-150, pageWidth)
	c.op("Q")

	c.text(white, 12, margin, top-30, ticket.Category.DisplayName()+" - "+passengerCode)
	c.text("", 18, margin, top-60, ticket.Route())
	c.text("", 10, margin, top-80, ticket.FormattedDate())

	y := pageHeight - 180
	c.op("q")
	c.op("%s RG", rule)
	c.op("%d %d m %d %d l S", margin, y, pageWidth-margin, y)
	c.op("Q")

	y -= 30
	c.text(black, 20, margin, y, ticket.FormattedDeparture())
	c.text("", 20, pageWidth-margin-50, y, ticket.FormattedArrival())
	c.text(darkGrey, 10, centerX-30, y, ticket.FormattedDuration())

	y -= 20
	c.text("", 10, margin, y, ticket.Origin)
	c.text("", 0, pageWidth-margin-60, y, ticket.Destination.Name())

	y -= 50
	c.label("Passenger", margin, y)
	c.value(fmt.Sprintf("Adult %d", n), margin, y-15)
	c.label("Ticket Number", centerX, y)
	c.value(passengerCode, centerX, y-15)

	y -= 50
	c.label("Class", margin, y)
	c.value(ticket.Class.String(), margin, y-15)
	c.label("Seat", centerX, y)
	c.value(ticket.Seat(n-1), centerX, y-15)

	y -= 60
	c.label("Fare per Ticket", margin, y)
	c.text(brandBlue, 16, margin, y-18, domain.FormatPKR(ticket.UnitPrice))

	y -= 80
	c.op("q")
	c.op("%s rg", ink)
	x := centerX - 80
	for i := 0; i < barcodeBars; i++ {
		w := barcodeWidth(i)
		c.op("%d %d %d %d re f", x, y, w, barcodeHeight)
		x += w + barcodeSpace
	}
	c.op("Q")
	c.text(darkGrey, 10, centerX-50, y-15, fmt.Sprintf("%sP%d%05d", ticket.ID, n, code))

	c.text(lightGrey, 8, centerX-60, 30, footerText)

	return c.buf.String()
}
