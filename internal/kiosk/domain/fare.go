package domain

import "math"

const (
	baseFarePKR  = 150.0
	ratePerKmPKR = 15.0

	MinPassengers = 1
	MaxPassengers = 10
)

// Quote is the priced result for one selection.
type Quote struct {
	UnitPrice  int64 `json:"unitPrice"`
	TotalPrice int64 `json:"totalPrice"`
}

// FareCalculator prices journeys. It holds no state; the zero value is ready to use.
type FareCalculator struct{}

// UnitPrice is the per-passenger fare:
//
//	unit  = round(150 + d*15) * categoryMultiplier
//	final = round(unit * classMultiplier)
func (FareCalculator) UnitPrice(distanceKm float64, category TicketCategory, class TravelClass) (int64, error) {
	if err := validateFareInput(distanceKm, category, class); err != nil {
		return 0, err
	}
	unit := roundHalfUp(baseFarePKR+distanceKm*ratePerKmPKR) * category.FareMultiplier()
	return int64(roundHalfUp(unit * class.Multiplier())), nil
}

// Price is the total fare for passengers travelling together.
func (c FareCalculator) Price(distanceKm float64, category TicketCategory, class TravelClass, passengers int) (int64, error) {
	q, err := c.Quote(distanceKm, category, class, passengers)
	return q.TotalPrice, err
}

func (c FareCalculator) Quote(distanceKm float64, category TicketCategory, class TravelClass, passengers int) (Quote, error) {
	if passengers < MinPassengers {
		return Quote{}, ValidationError{Field: "passengers", Msg: "at least one passenger is required"}
	}
	unit, err := c.UnitPrice(distanceKm, category, class)
	if err != nil {
		return Quote{}, err
	}
	total := int64(roundHalfUp(float64(unit) * float64(passengers)))
	return Quote{UnitPrice: unit, TotalPrice: total}, nil
}

func validateFareInput(distanceKm float64, category TicketCategory, class TravelClass) error {
	if distanceKm <= 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return ValidationError{Field: "distanceKm", Msg: "distance must be positive"}
	}
	if !category.Valid() {
		return ValidationError{Field: "category", Msg: "category is required"}
	}
	if !class.Valid() {
		return ValidationError{Field: "class", Msg: "unknown travel class"}
	}
	return nil
}

// roundHalfUp rounds to the nearest integer with halves going towards +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
