package network

import (
	"errors"
	"math"

	"github.com/paulmach/orb"

	"github.com/kass/searoute/pkg/geodesy"
)

// DefaultSnapRadiusKm bounds the phase-1 feature scan. The default is large
// enough to reach the network from any point on the globe.
const DefaultSnapRadiusKm = 30000.0

// ErrNoReachableNetwork means no feature lies within the snap radius of the
// input point. It is distinct from a path search failing between two
// successfully snapped points.
var ErrNoReachableNetwork = errors.New("no network feature within snap radius")

// Snapper maps arbitrary points onto network vertices with a two-phase
// nearest-neighbor search: nearest feature by segment distance first, then
// nearest vertex of that feature by great-circle distance. A Snapper is a
// pure view over its Network and is safe for concurrent use.
type Snapper struct {
	net      *Network
	radiusKm float64
}

// NewSnapper creates a snapper over net. A radius of 0 or less selects
// DefaultSnapRadiusKm.
func NewSnapper(net *Network, radiusKm float64) *Snapper {
	if radiusKm <= 0 {
		radiusKm = DefaultSnapRadiusKm
	}
	return &Snapper{net: net, radiusKm: radiusKm}
}

// Radius returns the configured snap radius in kilometers.
func (s *Snapper) Radius() float64 {
	return s.radiusKm
}

// Snap returns the network vertex a route should enter the network at for
// the given point. The result is always an exact vertex of the feature that
// won phase 1, so snapping an already-snapped point is the identity.
func (s *Snapper) Snap(p orb.Point) (orb.Point, error) {
	feature, ok := s.nearestFeature(p)
	if !ok {
		return orb.Point{}, ErrNoReachableNetwork
	}
	return nearestVertex(p, feature.Line), nil
}

// nearestFeature is phase 1: reduce the candidate features to the single one
// with the smallest point-to-segment distance within the radius. Ties go to
// the lowest feature index, so the result is reproducible for a given
// network ordering regardless of index traversal order.
func (s *Snapper) nearestFeature(p orb.Point) (*Feature, bool) {
	candidates := s.net.featuresNear(p, s.radiusKm)

	var best *Feature
	bestDist := math.Inf(1)
	for _, f := range candidates {
		d := geodesy.PointToLineKm(p, f.Line)
		if d > s.radiusKm {
			continue
		}
		if d < bestDist || (d == bestDist && best != nil && f.Index < best.Index) {
			best = f
			bestDist = d
		}
	}
	return best, best != nil
}

// nearestVertex is phase 2: scan only the chosen feature's vertices with a
// direct point-to-point great-circle distance. First vertex wins ties.
func nearestVertex(p orb.Point, line orb.LineString) orb.Point {
	best := line[0]
	bestDist := geodesy.DistanceKm(p, best)
	for _, v := range line[1:] {
		if d := geodesy.DistanceKm(p, v); d < bestDist {
			best = v
			bestDist = d
		}
	}
	return best
}
