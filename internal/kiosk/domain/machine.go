package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// TransactionState is the lifecycle position of the in-progress booking.
type TransactionState int

const (
	StateIdle TransactionState = iota
	StateSelecting
	StatePriced
	StateAwaitingPayment
	StateCompleted
	StateCancelled
)

func (s TransactionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StatePriced:
		return "priced"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("TransactionState(%d)", int(s))
	}
}

func (s TransactionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TransactionState) UnmarshalText(text []byte) error {
	for state := StateIdle; state <= StateCancelled; state++ {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return ValidationError{Field: "state", Msg: fmt.Sprintf("unknown state %q", text)}
}

// Machine is the transaction state machine of a single kiosk session. It is not
// safe for concurrent use; callers serialize access.
//
// Completed and Cancelled are never observed through State: both operations
// return the machine to Idle before returning.
type Machine struct {
	catalog *Catalog
	fares   FareCalculator
	factory *TicketFactory
	ledger  TicketLedger

	category    TicketCategory
	origin      string
	destination Destination
	passengers  int
	class       TravelClass
	inserted    int64
	lastChange  int64
}

func NewMachine(catalog *Catalog, factory *TicketFactory, ledger TicketLedger) *Machine {
	m := &Machine{
		catalog: catalog,
		factory: factory,
		ledger:  ledger,
	}
	m.Reset()
	return m
}

func (m *Machine) Catalog() *Catalog { return m.catalog }

// SelectCategory sets the category. Destinations belong to a category, so a
// change of category clears the selected destination.
func (m *Machine) SelectCategory(c TicketCategory) error {
	if !c.Valid() {
		return ValidationError{Field: "category", Msg: "unknown category"}
	}
	if m.category != c {
		m.category = c
		m.destination = Destination{}
	}
	return nil
}

func (m *Machine) SelectOrigin(station string) error {
	station = strings.TrimSpace(station)
	if station == "" {
		return ValidationError{Field: "origin", Msg: "origin cannot be empty"}
	}
	m.origin = station
	return nil
}

func (m *Machine) SelectDestination(d Destination) error {
	if d.IsZero() {
		return ValidationError{Field: "destination", Msg: "destination is required"}
	}
	m.destination = d
	return nil
}

func (m *Machine) SetPassengerCount(n int) error {
	if n < MinPassengers || n > MaxPassengers {
		return ValidationError{
			Field: "passengers",
			Msg:   fmt.Sprintf("must be between %d and %d", MinPassengers, MaxPassengers),
			Err:   ErrOutOfRange,
		}
	}
	m.passengers = n
	return nil
}

func (m *Machine) SelectClass(c TravelClass) error {
	if !c.Valid() {
		return ValidationError{Field: "class", Msg: "unknown travel class"}
	}
	m.class = c
	return nil
}

// MaxInsertedAmount caps the cash a single transaction can hold.
const MaxInsertedAmount int64 = 1_000_000_000

// InsertMoney adds cash. The running total is rounded to whole rupees after
// every insertion and may not exceed MaxInsertedAmount.
func (m *Machine) InsertMoney(amount float64) error {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return PaymentError{Amount: amount, Msg: "amount must be positive"}
	}
	total := roundHalfUp(float64(m.inserted) + amount)
	if total > float64(MaxInsertedAmount) {
		return PaymentError{Amount: amount, Msg: fmt.Sprintf("inserted cash cannot exceed %s", FormatPKR(MaxInsertedAmount))}
	}
	m.inserted = int64(total)
	return nil
}

func (m *Machine) Category() (TicketCategory, bool) { return m.category, m.category.Valid() }
func (m *Machine) Origin() (string, bool)           { return m.origin, m.origin != "" }
func (m *Machine) Destination() (Destination, bool) { return m.destination, !m.destination.IsZero() }
func (m *Machine) PassengerCount() int              { return m.passengers }
func (m *Machine) TravelClass() TravelClass         { return m.class }
func (m *Machine) InsertedAmount() int64            { return m.inserted }
func (m *Machine) LastChange() int64                { return m.lastChange }

// HasValidSelections reports whether category, origin and destination are set.
func (m *Machine) HasValidSelections() bool {
	return m.category.Valid() && m.origin != "" && !m.destination.IsZero()
}

// UnitPrice is the per-passenger fare of the current selection, 0 until both
// category and destination are chosen.
func (m *Machine) UnitPrice() int64 {
	return m.quote().UnitPrice
}

// CurrentPrice is the total fare of the current selection, 0 until priced.
func (m *Machine) CurrentPrice() int64 {
	return m.quote().TotalPrice
}

func (m *Machine) quote() Quote {
	if !m.category.Valid() || m.destination.IsZero() {
		return Quote{}
	}
	q, err := m.fares.Quote(m.destination.DistanceKm(), m.category, m.class, m.passengers)
	if err != nil {
		return Quote{}
	}
	return q
}

// RemainingDue is how much cash is still missing; never negative.
func (m *Machine) RemainingDue() int64 {
	remaining := m.CurrentPrice() - m.inserted
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Machine) CanComplete() bool {
	return m.HasValidSelections() &&
		m.passengers >= MinPassengers &&
		m.inserted >= m.CurrentPrice()
}

func (m *Machine) State() TransactionState {
	switch {
	case m.inserted > 0:
		return StateAwaitingPayment
	case m.HasValidSelections():
		return StatePriced
	case m.category.Valid() || m.origin != "" || !m.destination.IsZero() ||
		m.passengers != MinPassengers || m.class != ClassEconomy:
		return StateSelecting
	default:
		return StateIdle
	}
}

// CompletePurchase mints the ticket, records it in the ledger and returns the
// change due. On any error the transaction is left untouched.
func (m *Machine) CompletePurchase(ctx context.Context) (Ticket, int64, error) {
	if !m.CanComplete() {
		return Ticket{}, 0, StateError{Op: "complete purchase", Msg: m.incompleteReason(), Err: ErrIncompletePurchase}
	}

	ticket, err := m.factory.Mint(m.category, m.origin, m.destination, m.passengers, m.class)
	if err != nil {
		return Ticket{}, 0, err
	}

	change := m.inserted - ticket.TotalPrice
	if err := m.ledger.Append(ctx, ticket); err != nil {
		return Ticket{}, 0, fmt.Errorf("record ticket %s: %w", ticket.ID, err)
	}

	m.lastChange = change
	m.Reset()
	return ticket, change, nil
}

func (m *Machine) incompleteReason() string {
	var missing []string
	if !m.category.Valid() {
		missing = append(missing, "category")
	}
	if m.origin == "" {
		missing = append(missing, "origin")
	}
	if m.destination.IsZero() {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return "missing " + strings.Join(missing, ", ")
	}
	return fmt.Sprintf("insufficient payment, %s remaining", FormatPKR(m.RemainingDue()))
}

// Cancel refunds everything inserted and resets, whatever the state.
func (m *Machine) Cancel() int64 {
	refund := m.inserted
	m.Reset()
	return refund
}

// Reset restores the defaults. LastChange survives so the presentation can still
// show it after a completed purchase.
func (m *Machine) Reset() {
	m.category = 0
	m.origin = ""
	m.destination = Destination{}
	m.passengers = MinPassengers
	m.class = ClassEconomy
	m.inserted = 0
}

func (m *Machine) LastMintedTicket(ctx context.Context) (Ticket, error) {
	return m.ledger.Last(ctx)
}

// Snapshot is a read-only view of the machine for presentation layers.
type Snapshot struct {
	State          TransactionState `json:"state"`
	Category       TicketCategory   `json:"category,omitempty"`
	Origin         string           `json:"origin,omitempty"`
	Destination    *Destination     `json:"destination,omitempty"`
	PassengerCount int              `json:"passengerCount"`
	TravelClass    TravelClass      `json:"travelClass"`
	UnitPrice      int64            `json:"unitPrice"`
	TotalPrice     int64            `json:"totalPrice"`
	InsertedAmount int64            `json:"insertedAmount"`
	RemainingDue   int64            `json:"remainingDue"`
	CanComplete    bool             `json:"canComplete"`
	LastChange     int64            `json:"lastChange"`
}

func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		State:          m.State(),
		Category:       m.category,
		Origin:         m.origin,
		PassengerCount: m.passengers,
		TravelClass:    m.class,
		UnitPrice:      m.UnitPrice(),
		TotalPrice:     m.CurrentPrice(),
		InsertedAmount: m.inserted,
		RemainingDue:   m.RemainingDue(),
		CanComplete:    m.CanComplete(),
		LastChange:     m.lastChange,
	}
	if !m.destination.IsZero() {
		d := m.destination
		s.Destination = &d
	}
	return s
}
