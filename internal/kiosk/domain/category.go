package domain

import (
	"fmt"
	"strings"
)

// TicketCategory is the service type. The zero value means "not selected".
type TicketCategory int

const (
	CategoryRail TicketCategory = iota + 1
	CategoryRoad
)

func (c TicketCategory) Valid() bool {
	return c == CategoryRail || c == CategoryRoad
}

// FareMultiplier scales the distance-based base fare.
func (c TicketCategory) FareMultiplier() float64 {
	switch c {
	case CategoryRail:
		return 1.0
	case CategoryRoad:
		return 0.8
	default:
		return 0
	}
}

// CruiseSpeedKmh is the average speed used for arrival estimates.
func (c TicketCategory) CruiseSpeedKmh() float64 {
	switch c {
	case CategoryRail:
		return 80
	case CategoryRoad:
		return 60
	default:
		return 0
	}
}

func (c TicketCategory) DisplayName() string {
	switch c {
	case CategoryRail:
		return "Train"
	case CategoryRoad:
		return "Bus"
	default:
		return ""
	}
}

func (c TicketCategory) String() string {
	switch c {
	case CategoryRail:
		return "rail"
	case CategoryRoad:
		return "road"
	default:
		return "none"
	}
}

func (c TicketCategory) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return []byte(""), nil
	}
	return []byte(c.String()), nil
}

func (c *TicketCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseTicketCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseTicketCategory accepts the canonical names and the kiosk display names.
func ParseTicketCategory(s string) (TicketCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rail", "train":
		return CategoryRail, nil
	case "road", "bus":
		return CategoryRoad, nil
	default:
		return 0, ValidationError{Field: "category", Msg: fmt.Sprintf("unknown category %q", s)}
	}
}

// TravelClass is the fare tier. The zero value is Economy.
type TravelClass int

const (
	ClassEconomy TravelClass = iota
	ClassBusiness
	ClassACStandard
	ClassACSleeper
)

var travelClasses = []TravelClass{ClassEconomy, ClassBusiness, ClassACStandard, ClassACSleeper}

func TravelClasses() []TravelClass {
	return append([]TravelClass(nil), travelClasses...)
}

func (c TravelClass) Valid() bool {
	return c >= ClassEconomy && c <= ClassACSleeper
}

func (c TravelClass) Multiplier() float64 {
	switch c {
	case ClassEconomy:
		return 1.0
	case ClassBusiness:
		return 1.5
	case ClassACStandard:
		return 1.75
	case ClassACSleeper:
		return 2.0
	default:
		return 0
	}
}

func (c TravelClass) String() string {
	switch c {
	case ClassEconomy:
		return "Economy"
	case ClassBusiness:
		return "Business"
	case ClassACStandard:
		return "AC Standard"
	case ClassACSleeper:
		return "AC Sleeper"
	default:
		return fmt.Sprintf("TravelClass(%d)", int(c))
	}
}

func (c TravelClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ValidationError{Field: "class", Msg: "unknown travel class"}
	}
	return []byte(c.String()), nil
}

func (c *TravelClass) UnmarshalText(text []byte) error {
	parsed, err := ParseTravelClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseTravelClass is case-insensitive and treats '-', '_' and spaces alike,
// so "AC-Sleeper", "ac_sleeper" and "AC Sleeper" are the same class.
func ParseTravelClass(s string) (TravelClass, error) {
	key := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch strings.Join(strings.Fields(key), " ") {
	case "economy":
		return ClassEconomy, nil
	case "business":
		return ClassBusiness, nil
	case "ac standard":
		return ClassACStandard, nil
	case "ac sleeper":
		return ClassACSleeper, nil
	default:
		return 0, ValidationError{Field: "class", Msg: fmt.Sprintf("unknown travel class %q", s)}
	}
}
