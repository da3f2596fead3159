package domain

import pincodedomain "github.com/aerwok/rocketrybox/internal/pincode/domain"

// Zone classifies an origin/destination pincode pair for pricing. The set is
// closed: every resolvable pair maps to exactly one of these values.
type Zone string

const (
	ZoneWithinCity   Zone = "within_city"
	ZoneWithinState  Zone = "within_state"
	ZoneMetroToMetro Zone = "metro_to_metro"
	ZoneSpecial      Zone = "special_zone"
	ZoneRestOfIndia  Zone = "rest_of_india"
)

// Valid reports whether z is a member of the closed zone set.
func (z Zone) Valid() bool {
	switch z {
	case ZoneWithinCity, ZoneWithinState, ZoneMetroToMetro, ZoneSpecial, ZoneRestOfIndia:
		return true
	}
	return false
}

// Resolution is the outcome of classifying a pincode pair.
type Resolution struct {
	Zone        Zone
	Origin      pincodedomain.Record
	Destination pincodedomain.Record
}
