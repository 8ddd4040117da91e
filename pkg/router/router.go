// Package router composes snapping, path search, and route assembly into
// the public sea-route operation.
package router

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kass/searoute/pkg/geodesy"
	"github.com/kass/searoute/pkg/network"
	"github.com/kass/searoute/pkg/pathfind"
	"github.com/kass/searoute/pkg/units"
)

// ErrInvalidInput marks malformed coordinate or unit input. Validation
// happens before any snapping attempt.
var ErrInvalidInput = errors.New("invalid input")

// Route is the final output: the resolved vertex path, unmodified, plus its
// measured length. Immutable once constructed.
type Route struct {
	Line   orb.LineString
	Length float64
	Units  units.Unit
}

// Feature renders the route as a GeoJSON line feature annotated with
// length and units properties.
func (r *Route) Feature() *geojson.Feature {
	f := geojson.NewFeature(r.Line)
	f.Properties["length"] = r.Length
	f.Properties["units"] = r.Units.String()
	return f
}

// Assemble converts a raw vertex path into a measured Route. The geometry is
// the input sequence exactly; no resampling or simplification. A degenerate
// single-vertex path has length 0.
func Assemble(path orb.LineString, unit units.Unit) *Route {
	return &Route{
		Line:   path,
		Length: geodesy.Length(path, unit),
		Units:  unit,
	}
}

// Router is the routing context: it owns a handle to the immutable network
// (through its snapper) and to the path search. Construct one per network;
// there is no process-wide state.
type Router struct {
	snapper *network.Snapper
	finder  pathfind.Finder
}

// New creates a router over the given network and path search with the
// default snap radius.
func New(net *network.Network, finder pathfind.Finder) *Router {
	return NewWithRadius(net, finder, 0)
}

// NewWithRadius creates a router with an explicit snap radius in kilometers.
// A radius of 0 or less selects the default.
func NewWithRadius(net *network.Network, finder pathfind.Finder, radiusKm float64) *Router {
	return &Router{
		snapper: network.NewSnapper(net, radiusKm),
		finder:  finder,
	}
}

// Snap exposes the router's snapper, mapping an arbitrary point to its
// network entry vertex.
func (rt *Router) Snap(p orb.Point) (orb.Point, error) {
	if err := validatePoint(p); err != nil {
		return orb.Point{}, err
	}
	return rt.snapper.Snap(p)
}

// Route computes a sea route between two arbitrary points.
//
// Outcomes:
//   - a measured Route on success;
//   - (nil, nil) when the snapped endpoints are not connected — the explicit
//     "no route found" result, distinct from any error;
//   - an error wrapping ErrInvalidInput for malformed input, or
//     network.ErrNoReachableNetwork when an endpoint cannot be snapped.
//
// An empty unit selects units.Default. Repeated calls with the same inputs
// over the same network return identical routes.
func (rt *Router) Route(origin, destination orb.Point, unit units.Unit) (*Route, error) {
	if unit == "" {
		unit = units.Default
	}
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: unknown distance unit %q", ErrInvalidInput, unit)
	}
	if err := validatePoint(origin); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	if err := validatePoint(destination); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	from, err := rt.snapper.Snap(origin)
	if err != nil {
		return nil, fmt.Errorf("snap origin: %w", err)
	}
	to, err := rt.snapper.Snap(destination)
	if err != nil {
		return nil, fmt.Errorf("snap destination: %w", err)
	}

	path, err := rt.finder.FindPath(from, to)
	if err != nil {
		if errors.Is(err, pathfind.ErrNoPath) {
			return nil, nil
		}
		return nil, err
	}

	return Assemble(path, unit), nil
}

// Position normalizes a bare [lon, lat] pair into a point.
func Position(coords []float64) (orb.Point, error) {
	if len(coords) != 2 {
		return orb.Point{}, fmt.Errorf("%w: position needs 2 coordinates, got %d", ErrInvalidInput, len(coords))
	}
	p := orb.Point{coords[0], coords[1]}
	if err := validatePoint(p); err != nil {
		return orb.Point{}, err
	}
	return p, nil
}

// FromFeature normalizes a GeoJSON point feature into a point.
func FromFeature(f *geojson.Feature) (orb.Point, error) {
	if f == nil {
		return orb.Point{}, fmt.Errorf("%w: nil feature", ErrInvalidInput)
	}
	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("%w: feature geometry is %T, want point", ErrInvalidInput, f.Geometry)
	}
	if err := validatePoint(p); err != nil {
		return orb.Point{}, err
	}
	return p, nil
}

// validatePoint rejects non-finite coordinates. Out-of-range but finite
// lon/lat values are accepted as-is, matching the network data contract.
func validatePoint(p orb.Point) error {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidInput, c)
		}
	}
	return nil
}
