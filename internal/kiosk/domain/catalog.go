package domain

import "strings"

// Catalog is the static reference data of one kiosk: where journeys start and
// which destinations each category serves.
type Catalog struct {
	origins      []string
	destinations map[TicketCategory][]Destination
}

func NewCatalog(origins []string, rail, road []Destination) *Catalog {
	return &Catalog{
		origins: append([]string(nil), origins...),
		destinations: map[TicketCategory][]Destination{
			CategoryRail: append([]Destination(nil), rail...),
			CategoryRoad: append([]Destination(nil), road...),
		},
	}
}

// DefaultCatalog is the network served by the kiosk.
func DefaultCatalog() *Catalog {
	origins := []string{
		"Lahore", "Karachi", "Islamabad", "Rawalpindi",
		"Peshawar", "Quetta", "Multan", "Faisalabad",
	}
	rail := []Destination{
		MustDestination("Karachi", 1211),
		MustDestination("Islamabad", 375),
		MustDestination("Rawalpindi", 368),
		MustDestination("Peshawar", 480),
		MustDestination("Quetta", 870),
		MustDestination("Multan", 346),
		MustDestination("Faisalabad", 128),
		MustDestination("Hyderabad", 1055),
		MustDestination("Sukkur", 680),
		MustDestination("Bahawalpur", 420),
	}
	road := []Destination{
		MustDestination("Multan", 346),
		MustDestination("Faisalabad", 128),
		MustDestination("Sialkot", 125),
		MustDestination("Gujranwala", 68),
		MustDestination("Sargodha", 186),
		MustDestination("Sahiwal", 175),
		MustDestination("Gujrat", 142),
		MustDestination("Jhelum", 195),
		MustDestination("Sheikhupura", 38),
		MustDestination("Kasur", 55),
	}
	return NewCatalog(origins, rail, road)
}

func (c *Catalog) Origins() []string {
	return append([]string(nil), c.origins...)
}

// FindOrigin matches name case-insensitively and returns the catalog spelling.
func (c *Catalog) FindOrigin(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, o := range c.origins {
		if strings.EqualFold(o, name) {
			return o, true
		}
	}
	return "", false
}

// Destinations returns the destinations served by category, or nil for an
// unselected category.
func (c *Catalog) Destinations(category TicketCategory) []Destination {
	return append([]Destination(nil), c.destinations[category]...)
}

// DestinationsFrom is Destinations without the origin itself.
func (c *Catalog) DestinationsFrom(category TicketCategory, origin string) []Destination {
	all := c.destinations[category]
	out := make([]Destination, 0, len(all))
	for _, d := range all {
		if origin != "" && strings.EqualFold(d.Name(), strings.TrimSpace(origin)) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (c *Catalog) FindDestination(category TicketCategory, name string) (Destination, bool) {
	name = strings.TrimSpace(name)
	for _, d := range c.destinations[category] {
		if strings.EqualFold(d.Name(), name) {
			return d, true
		}
	}
	return Destination{}, false
}
