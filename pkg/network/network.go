// Package network holds the immutable sea-lane network used as the routing
// substrate, an R-Tree index over feature bounds for fast proximity
// pre-filtering, and the point snapper that maps arbitrary coordinates onto
// network vertices.
package network

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kass/searoute/pkg/geodesy"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// Feature is a single navigable polyline of the network. Index is the
// position of the feature in load order and is what snap tie-breaks key on.
type Feature struct {
	Index int
	Line  orb.LineString
}

// featureItem wraps a feature's bounding box to implement rtreego.Spatial.
type featureItem struct {
	feature *Feature
	rect    *rtreego.Rect
}

func (fi *featureItem) Bounds() *rtreego.Rect {
	return fi.rect
}

// Network is an ordered, read-only collection of sea-lane features.
// It never changes after construction, so concurrent reads need no locking.
type Network struct {
	features []Feature
	tree     *rtreego.Rtree
	bound    orb.Bound
}

// New builds a Network from ordered polylines. Lines with fewer than two
// points are rejected. The spatial index is built once here; the Network is
// immutable afterwards.
func New(lines []orb.LineString) (*Network, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("network has no features")
	}

	n := &Network{
		features: make([]Feature, len(lines)),
		tree:     rtreego.NewTree(dimensions, minChildren, maxChildren),
	}

	for i, line := range lines {
		if len(line) < 2 {
			return nil, fmt.Errorf("feature %d has %d points, need at least 2", i, len(line))
		}
		n.features[i] = Feature{Index: i, Line: line}
	}

	// Compute bounding rects in parallel, insert sequentially. Insertion
	// into rtreego is not safe for concurrent writers.
	items := make([]*featureItem, len(n.features))
	numCPU := runtime.NumCPU()
	batchSize := len(n.features) / numCPU
	if batchSize < 1 {
		batchSize = 1
		numCPU = len(n.features)
	}

	var wg sync.WaitGroup
	for w := 0; w < numCPU && w*batchSize < len(n.features); w++ {
		start := w * batchSize
		end := start + batchSize
		if w == numCPU-1 || end > len(n.features) {
			end = len(n.features)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				f := &n.features[i]
				items[i] = &featureItem{feature: f, rect: boundRect(f.Line.Bound())}
			}
		}(start, end)
	}
	wg.Wait()

	n.bound = n.features[0].Line.Bound()
	for _, item := range items {
		n.tree.Insert(item)
		n.bound = n.bound.Union(item.feature.Line.Bound())
	}

	return n, nil
}

// FromFeatureCollection builds a Network from a GeoJSON feature collection,
// keeping file order. LineString features contribute one network feature
// each; MultiLineString features contribute one per member line. Other
// geometry types are skipped.
func FromFeatureCollection(fc *geojson.FeatureCollection) (*Network, error) {
	var lines []orb.LineString
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, g)
		case orb.MultiLineString:
			for _, ls := range g {
				lines = append(lines, ls)
			}
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("feature collection contains no line features")
	}
	return New(lines)
}

// LoadGeoJSON reads a GeoJSON feature collection of sea lanes from a file.
func LoadGeoJSON(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse network GeoJSON: %w", err)
	}

	return FromFeatureCollection(fc)
}

// Len returns the number of features in the network.
func (n *Network) Len() int {
	return len(n.features)
}

// Features returns the ordered feature list. The slice and the lines it
// references must not be mutated.
func (n *Network) Features() []Feature {
	return n.features
}

// Bound returns the bounding box covering every feature.
func (n *Network) Bound() orb.Bound {
	return n.bound
}

// featuresNear returns the features whose bounding boxes intersect a box of
// the given radius around p. Result order is not defined; callers that need
// determinism must reduce by feature index.
func (n *Network) featuresNear(p orb.Point, radiusKm float64) []*Feature {
	deg := (radiusKm / geodesy.EarthRadiusKm) * (180 / math.Pi)

	bounds, err := rtreego.NewRect(
		rtreego.Point{p.Lat() - deg, p.Lon() - deg},
		[]float64{2 * deg, 2 * deg},
	)
	if err != nil {
		return nil
	}

	results := n.tree.SearchIntersect(bounds)
	features := make([]*Feature, 0, len(results))
	for _, result := range results {
		item, ok := result.(*featureItem)
		if !ok {
			continue
		}
		features = append(features, item.feature)
	}
	return features
}

// boundRect converts an orb bound into an rtreego rect in (lat, lon) order,
// padding degenerate extents so rtreego accepts them.
func boundRect(b orb.Bound) *rtreego.Rect {
	latSpan := b.Max.Lat() - b.Min.Lat()
	lonSpan := b.Max.Lon() - b.Min.Lon()
	if latSpan < tolerance {
		latSpan = tolerance
	}
	if lonSpan < tolerance {
		lonSpan = tolerance
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min.Lat(), b.Min.Lon()},
		[]float64{latSpan, lonSpan},
	)
	if err != nil {
		// Only reachable with NaN coordinates; fall back to a point rect.
		p := rtreego.Point{b.Min.Lat(), b.Min.Lon()}
		return p.ToRect(tolerance)
	}
	return rect
}
