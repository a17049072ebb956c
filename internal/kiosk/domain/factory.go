package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTicketPrefix = "PK"

	seatRows    = 20
	seatLetters = 4

	bookingLeadTime = time.Hour
)

// RandomSource is satisfied by *rand.Rand from math/rand/v2.
type RandomSource interface {
	IntN(n int) int
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// TicketFactory mints tickets. It is safe for concurrent use.
type TicketFactory struct {
	fares   FareCalculator
	counter *TicketCounter
	clock   Clock
	prefix  string

	mu     sync.Mutex
	random RandomSource
}

type FactoryOption func(*TicketFactory)

func WithCounter(counter *TicketCounter) FactoryOption {
	return func(f *TicketFactory) { f.counter = counter }
}

// WithRandom injects the source for seat labels. Tests pass a seeded *rand.Rand.
func WithRandom(random RandomSource) FactoryOption {
	return func(f *TicketFactory) { f.random = random }
}

func WithClock(clock Clock) FactoryOption {
	return func(f *TicketFactory) { f.clock = clock }
}

func WithPrefix(prefix string) FactoryOption {
	return func(f *TicketFactory) { f.prefix = prefix }
}

func NewTicketFactory(opts ...FactoryOption) *TicketFactory {
	f := &TicketFactory{
		counter: ProcessCounter(),
		clock:   SystemClock{},
		prefix:  DefaultTicketPrefix,
		random:  globalRandom{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValidTicketPrefix reports whether prefix is two upper-case ASCII letters.
func ValidTicketPrefix(prefix string) bool {
	if len(prefix) != 2 {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < 'A' || prefix[i] > 'Z' {
			return false
		}
	}
	return true
}

// Mint validates the selection, allocates the next id and builds the ticket.
// No id is consumed when validation fails.
func (f *TicketFactory) Mint(category TicketCategory, origin string, destination Destination, passengers int, class TravelClass) (Ticket, error) {
	origin = strings.TrimSpace(origin)
	switch {
	case !category.Valid():
		return Ticket{}, ValidationError{Field: "category", Msg: "category is required"}
	case origin == "":
		return Ticket{}, ValidationError{Field: "origin", Msg: "origin cannot be empty"}
	case destination.IsZero() || destination.DistanceKm() <= 0:
		return Ticket{}, ValidationError{Field: "destination", Msg: "destination is required"}
	case passengers < MinPassengers || passengers > MaxPassengers:
		return Ticket{}, ValidationError{
			Field: "passengers",
			Msg:   fmt.Sprintf("must be between %d and %d", MinPassengers, MaxPassengers),
			Err:   ErrOutOfRange,
		}
	}

	quote, err := f.fares.Quote(destination.DistanceKm(), category, class, passengers)
	if err != nil {
		return Ticket{}, err
	}

	now := f.clock.Now()
	departs := DepartureAfter(now)

	return Ticket{
		ID:          fmt.Sprintf("%s%04d", f.prefix, f.counter.NextID()),
		Category:    category,
		Origin:      origin,
		Destination: destination,
		Passengers:  passengers,
		Class:       class,
		UnitPrice:   quote.UnitPrice,
		TotalPrice:  quote.TotalPrice,
		PurchasedAt: now,
		DepartsAt:   departs,
		ArrivesAt:   departs.Add(TravelTime(destination.DistanceKm(), category)),
		Seats:       f.seats(passengers),
	}, nil
}

// seats draws one label per passenger. Draws are independent, so two passengers
// on the same ticket may receive the same seat.
func (f *TicketFactory) seats(count int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	seats := make([]string, count)
	for i := range seats {
		row := f.random.IntN(seatRows) + 1
		letter := rune('A' + f.random.IntN(seatLetters))
		seats[i] = fmt.Sprintf("%d-%c", row, letter)
	}
	return seats
}

// DepartureAfter rounds now up to the next half-hour boundary and adds the
// booking lead time. Minutes 0..29 go to :30 of the same hour, 30..59 to :00 of
// the next.
func DepartureAfter(now time.Time) time.Time {
	hour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	if now.Minute() < 30 {
		return hour.Add(30 * time.Minute).Add(bookingLeadTime)
	}
	return hour.Add(time.Hour).Add(bookingLeadTime)
}

// TravelTime is round(distance / cruiseSpeed * 60) whole minutes.
func TravelTime(distanceKm float64, category TicketCategory) time.Duration {
	speed := category.CruiseSpeedKmh()
	if speed <= 0 {
		return 0
	}
	minutes := roundHalfUp(distanceKm / speed * 60)
	return time.Duration(minutes) * time.Minute
}
