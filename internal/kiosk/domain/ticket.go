package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "02 Jan 2006"
	clockLayout = "15:04"
)

// Ticket is the immutable record of one completed purchase. Tickets are only
// created by TicketFactory; callers must treat every field as read-only.
type Ticket struct {
	ID          string         `json:"id"`
	Category    TicketCategory `json:"category"`
	Origin      string         `json:"origin"`
	Destination Destination    `json:"destination"`
	Passengers  int            `json:"passengers"`
	Class       TravelClass    `json:"class"`
	UnitPrice   int64          `json:"unitPrice"`
	TotalPrice  int64          `json:"totalPrice"`
	PurchasedAt time.Time      `json:"purchasedAt"`
	DepartsAt   time.Time      `json:"departsAt"`
	ArrivesAt   time.Time      `json:"arrivesAt"`
	Seats       []string       `json:"seats"`
}

// Seat returns the seat of the passenger at index i (0-based), or "N/A".
func (t Ticket) Seat(i int) string {
	if i < 0 || i >= len(t.Seats) {
		return "N/A"
	}
	return t.Seats[i]
}

// PassengerCode is the per-passenger ticket number, e.g. "PK0001-P2" for n = 2.
func (t Ticket) PassengerCode(n int) string {
	return fmt.Sprintf("%s-P%d", t.ID, n)
}

func (t Ticket) Route() string {
	return t.Origin + " -> " + t.Destination.Name()
}

func (t Ticket) Duration() time.Duration {
	return t.ArrivesAt.Sub(t.DepartsAt)
}

func (t Ticket) FormattedDate() string      { return t.DepartsAt.Format(dateLayout) }
func (t Ticket) FormattedDeparture() string { return t.DepartsAt.Format(clockLayout) }
func (t Ticket) FormattedArrival() string   { return t.ArrivesAt.Format(clockLayout) }
func (t Ticket) FormattedDuration() string  { return FormatDuration(t.Duration()) }

// Receipt is the fixed-width text printed by the kiosk after a purchase.
func (t Ticket) Receipt() string {
	border := strings.Repeat("=", 48)
	line := strings.Repeat("-", 48)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", border)
	b.WriteString("              BOARDING PASS\n")
	fmt.Fprintf(&b, "%s\n\n", border)

	fmt.Fprintf(&b, "  %s (%s)\n", strings.ToUpper(t.Category.DisplayName()), t.ID)
	fmt.Fprintf(&b, "  %s  -->  %s\n", t.Origin, t.Destination.Name())
	fmt.Fprintf(&b, "  %s\n\n", t.FormattedDate())

	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "  Departure: %-12s  Arrival: %s\n", t.FormattedDeparture(), t.FormattedArrival())
	fmt.Fprintf(&b, "  Duration:  %s\n", t.FormattedDuration())
	fmt.Fprintf(&b, "%s\n\n", line)

	fmt.Fprintf(&b, "  Passenger(s): %d Adult(s)\n", t.Passengers)
	fmt.Fprintf(&b, "  Class:        %s\n", t.Class)
	fmt.Fprintf(&b, "  Seat(s):      %s\n\n", strings.Join(t.Seats, ", "))

	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "  TOTAL FARE:   %s\n", FormatPKR(t.TotalPrice))
	fmt.Fprintf(&b, "%s\n", border)
	b.WriteString("         Thank you for traveling with us!\n")
	b.WriteString(border)
	return b.String()
}

// TicketLedger is the append-only history of minted tickets.
type TicketLedger interface {
	Append(ctx context.Context, ticket Ticket) error
	FindByID(ctx context.Context, id string) (Ticket, error)
	List(ctx context.Context) ([]Ticket, error)
	Last(ctx context.Context) (Ticket, error)
}
