package domain

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"sync"
	"testing"
	"time"
)

var seatPattern = regexp.MustCompile(`^([1-9]|1[0-9]|20)-[A-D]$`)

func TestTicketFactoryMint(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 12, 0, 0, time.UTC)
	factory := NewTicketFactory(
		WithCounter(&TicketCounter{}),
		WithClock(fixedClock(now)),
		WithRandom(rand.New(rand.NewPCG(1, 2))),
	)

	dest := MustDestination("Islamabad", 375)
	ticket, err := factory.Mint(CategoryRail, " Lahore ", dest, 3, ClassBusiness)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if ticket.ID != "PK0001" {
		t.Fatalf("ID = %q", ticket.ID)
	}
	if ticket.Origin != "Lahore" || ticket.Destination != dest || ticket.Passengers != 3 {
		t.Fatalf("selection not copied: %+v", ticket)
	}
	if ticket.UnitPrice != 8663 || ticket.TotalPrice != 25989 {
		t.Fatalf("prices = %d/%d", ticket.UnitPrice, ticket.TotalPrice)
	}
	if !ticket.PurchasedAt.Equal(now) {
		t.Fatalf("PurchasedAt = %v", ticket.PurchasedAt)
	}
	if want := time.Date(2026, 10, 15, 11, 30, 0, 0, time.UTC); !ticket.DepartsAt.Equal(want) {
		t.Fatalf("DepartsAt = %v, want %v", ticket.DepartsAt, want)
	}
	if ticket.Duration() != 281*time.Minute || ticket.FormattedArrival() != "16:11" {
		t.Fatalf("duration = %v, arrival = %s", ticket.Duration(), ticket.FormattedArrival())
	}
	if len(ticket.Seats) != 3 {
		t.Fatalf("seats = %v", ticket.Seats)
	}
	for _, seat := range ticket.Seats {
		if !seatPattern.MatchString(seat) {
			t.Fatalf("seat %q does not match %s", seat, seatPattern)
		}
	}

	next, err := factory.Mint(CategoryRoad, "Lahore", MustDestination("Kasur", 55), 1, ClassEconomy)
	if err != nil || next.ID != "PK0002" {
		t.Fatalf("second mint = %q, %v", next.ID, err)
	}
}

func TestTicketFactoryValidationDoesNotConsumeID(t *testing.T) {
	counter := &TicketCounter{}
	factory := NewTicketFactory(WithCounter(counter))
	dest := MustDestination("Multan", 346)

	cases := []struct {
		name string
		mint func() (Ticket, error)
		want error
	}{
		{"no category", func() (Ticket, error) { return factory.Mint(0, "Lahore", dest, 1, ClassEconomy) }, ErrInvalidInput},
		{"blank origin", func() (Ticket, error) { return factory.Mint(CategoryRoad, " ", dest, 1, ClassEconomy) }, ErrInvalidInput},
		{"no destination", func() (Ticket, error) { return factory.Mint(CategoryRoad, "Lahore", Destination{}, 1, ClassEconomy) }, ErrInvalidInput},
		{"too many passengers", func() (Ticket, error) { return factory.Mint(CategoryRoad, "Lahore", dest, 11, ClassEconomy) }, ErrOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.mint(); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if counter.Current() != 0 {
		t.Fatalf("counter advanced to %d on failed mints", counter.Current())
	}
}

func TestTicketFactoryConcurrentMintsAreUnique(t *testing.T) {
	const workers, perWorker = 16, 50

	counter := &TicketCounter{}
	factory := NewTicketFactory(WithCounter(counter))
	dest := MustDestination("Kasur", 55)

	var mu sync.Mutex
	var wg sync.WaitGroup
	ids := make(map[string]struct{}, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ticket, err := factory.Mint(CategoryRoad, "Lahore", dest, 2, ClassEconomy)
				if err != nil {
					t.Errorf("Mint: %v", err)
					return
				}
				mu.Lock()
				ids[ticket.ID] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(ids) != workers*perWorker {
		t.Fatalf("got %d unique ids, want %d", len(ids), workers*perWorker)
	}
	if counter.Current() != workers*perWorker {
		t.Fatalf("counter = %d", counter.Current())
	}
}

func TestDepartureAfter(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2026, 10, 15, h, m, 0, 0, time.UTC) }
	tests := []struct {
		now, want time.Time
	}{
		{day(10, 0), day(11, 30)},
		{day(10, 12), day(11, 30)},
		{day(10, 29), day(11, 30)},
		{day(10, 30), day(12, 0)},
		{day(10, 59), day(12, 0)},
		{day(23, 45), time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := DepartureAfter(tt.now); !got.Equal(tt.want) {
			t.Fatalf("DepartureAfter(%s) = %s, want %s", tt.now.Format("15:04"), got, tt.want)
		}
	}
}

func TestTravelTime(t *testing.T) {
	if got := TravelTime(375, CategoryRail); got != 281*time.Minute {
		t.Fatalf("rail 375 km = %v", got)
	}
	if got := TravelTime(55, CategoryRoad); got != 55*time.Minute {
		t.Fatalf("road 55 km = %v", got)
	}
	if got := TravelTime(100, 0); got != 0 {
		t.Fatalf("no category = %v", got)
	}
}

func TestValidTicketPrefix(t *testing.T) {
	for prefix, want := range map[string]bool{"PK": true, "TK": true, "pk": false, "P": false, "PKR": false, "P1": false} {
		if ValidTicketPrefix(prefix) != want {
			t.Fatalf("ValidTicketPrefix(%q) != %v", prefix, want)
		}
	}
}
