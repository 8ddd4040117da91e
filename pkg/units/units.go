// Package units defines the distance units a route length can be reported in.
package units

import (
	"fmt"
	"strings"
)

// Unit is a distance unit accepted by the routing API.
type Unit string

const (
	NauticalMiles Unit = "nm"
	Kilometers    Unit = "kilometers"
	Miles         Unit = "miles"
	Degrees       Unit = "degrees"
	Radians       Unit = "radians"
)

// Default is the unit used when the caller does not specify one.
const Default = NauticalMiles

// All lists every supported unit.
var All = []Unit{NauticalMiles, Kilometers, Miles, Degrees, Radians}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case NauticalMiles, Kilometers, Miles, Degrees, Radians:
		return true
	}
	return false
}

func (u Unit) String() string {
	return string(u)
}

// Parse converts a string into a Unit. An empty string yields Default.
// "km" is accepted as a shorthand for "kilometers".
func Parse(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Default, nil
	case "nm":
		return NauticalMiles, nil
	case "kilometers", "km":
		return Kilometers, nil
	case "miles":
		return Miles, nil
	case "degrees":
		return Degrees, nil
	case "radians":
		return Radians, nil
	}
	return "", fmt.Errorf("unknown distance unit %q", s)
}
