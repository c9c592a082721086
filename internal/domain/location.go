package domain

// Location is a delivery address and the distance in miles to every
// other address reachable from it. Distances are symmetric and a
// location is zero miles from itself.
type Location struct {
	Address   string
	Name      string
	Zip       string
	Distances map[string]float64
}

func NewLocation(address, name, zip string) *Location {
	return &Location{
		Address:   address,
		Name:      name,
		Zip:       zip,
		Distances: map[string]float64{address: 0},
	}
}

// SetDistance records the distance in both directions.
func (l *Location) SetDistance(other *Location, miles float64) {
	l.Distances[other.Address] = miles
	other.Distances[l.Address] = miles
}
