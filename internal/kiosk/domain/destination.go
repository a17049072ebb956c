package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Destination is an immutable (name, distance) pair. Two destinations are equal
// when both fields are equal, so values can be compared with ==.
type Destination struct {
	name       string
	distanceKm float64
}

func NewDestination(name string, distanceKm float64) (Destination, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Destination{}, ValidationError{Field: "destination", Msg: "name cannot be empty"}
	}
	if !(distanceKm > 0) || math.IsInf(distanceKm, 0) {
		return Destination{}, ValidationError{Field: "distanceKm", Msg: "distance must be a positive finite number"}
	}
	return Destination{name: name, distanceKm: distanceKm}, nil
}

// MustDestination panics on invalid input. Only for static catalog data.
func MustDestination(name string, distanceKm float64) Destination {
	d, err := NewDestination(name, distanceKm)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Destination) Name() string        { return d.name }
func (d Destination) DistanceKm() float64 { return d.distanceKm }

// IsZero reports whether d was never constructed.
func (d Destination) IsZero() bool { return d.name == "" }

func (d Destination) String() string {
	return fmt.Sprintf("%s (%d km)", d.name, int(d.distanceKm))
}

type destinationJSON struct {
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distanceKm"`
}

func (d Destination) MarshalJSON() ([]byte, error) {
	return json.Marshal(destinationJSON{Name: d.name, DistanceKm: d.distanceKm})
}

func (d *Destination) UnmarshalJSON(data []byte) error {
	var raw destinationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewDestination(raw.Name, raw.DistanceKm)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
