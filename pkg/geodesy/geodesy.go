// Package geodesy provides the great-circle math used for snapping and
// route measurement: haversine central angles, polyline lengths in a
// caller-chosen unit, and point-to-segment distances.
package geodesy

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/kass/searoute/pkg/units"
)

const (
	// EarthRadiusKm matches the radius used by the spatial index math.
	EarthRadiusKm = 6371.0

	kmPerMile = 1.609344

	// milesPerNauticalMile is the fixed miles -> nautical miles conversion
	// constant. Kept exactly at this value for numerical compatibility.
	milesPerNauticalMile = 1.15078

	// kmPerDegree is the approximate length of one degree of latitude,
	// used by the local planar projection in PointToSegmentKm.
	kmPerDegree = 111.32
)

// Haversine returns the central angle between a and b in radians.
func Haversine(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180.0
	lon1 := a.Lon() * math.Pi / 180.0
	lat2 := b.Lat() * math.Pi / 180.0
	lon2 := b.Lon() * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FromRadians converts a central angle into a distance in the given unit.
// Unknown units fall back to nautical miles.
func FromRadians(rad float64, u units.Unit) float64 {
	switch u {
	case units.Radians:
		return rad
	case units.Degrees:
		return rad * 180.0 / math.Pi
	case units.Kilometers:
		return rad * EarthRadiusKm
	case units.Miles:
		return rad * EarthRadiusKm / kmPerMile
	default:
		return rad * EarthRadiusKm / kmPerMile / milesPerNauticalMile
	}
}

// Distance returns the great-circle distance between a and b in the given unit.
func Distance(a, b orb.Point, u units.Unit) float64 {
	return FromRadians(Haversine(a, b), u)
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
func DistanceKm(a, b orb.Point) float64 {
	return Haversine(a, b) * EarthRadiusKm
}

// Length returns the cumulative great-circle length of the polyline in the
// given unit. A polyline with fewer than two points has length 0.
func Length(ls orb.LineString, u units.Unit) float64 {
	var rad float64
	for i := 1; i < len(ls); i++ {
		rad += Haversine(ls[i-1], ls[i])
	}
	return FromRadians(rad, u)
}

// PointToSegmentKm returns the shortest distance in kilometers from p to the
// segment a-b, measured to the closest point along the segment rather than
// only to its endpoints. Segments are projected into a local planar frame
// centered on p, which is accurate at sea-lane scale but degrades for
// segments crossing the antimeridian.
func PointToSegmentKm(p, a, b orb.Point) float64 {
	scale := math.Cos(p.Lat() * math.Pi / 180.0)

	ax := (a.Lon() - p.Lon()) * kmPerDegree * scale
	ay := (a.Lat() - p.Lat()) * kmPerDegree
	bx := (b.Lon() - p.Lon()) * kmPerDegree * scale
	by := (b.Lat() - p.Lat()) * kmPerDegree

	dx := bx - ax
	dy := by - ay

	segLen2 := dx*dx + dy*dy
	if segLen2 == 0 {
		return math.Hypot(ax, ay)
	}

	// Projection of p (the origin) onto the segment, clamped to [0,1].
	t := -(ax*dx + ay*dy) / segLen2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	cx := ax + t*dx
	cy := ay + t*dy
	return math.Hypot(cx, cy)
}

// PointToLineKm returns the shortest distance in kilometers from p to any
// point along the polyline.
func PointToLineKm(p orb.Point, ls orb.LineString) float64 {
	best := math.Inf(1)
	for i := 1; i < len(ls); i++ {
		if d := PointToSegmentKm(p, ls[i-1], ls[i]); d < best {
			best = d
		}
	}
	return best
}
