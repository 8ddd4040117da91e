// Package pathfind answers shortest-path queries between network vertices.
// The router consumes it through the Finder interface; the default
// implementation runs Dijkstra over an lvlath graph derived from the
// network's features.
package pathfind

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"
	"github.com/paulmach/orb"

	"github.com/kass/searoute/pkg/geodesy"
	"github.com/kass/searoute/pkg/network"
)

// ErrNoPath means the two snapped endpoints sit on disconnected components
// of the network. This is an expected outcome, not a failure of the search.
var ErrNoPath = errors.New("no path between snapped points")

// Finder resolves an ordered vertex path between two network vertices.
type Finder interface {
	// FindPath returns the path from a to b along the network, or ErrNoPath
	// when the endpoints are not connected. Both points must be network
	// vertices, i.e. snapper output.
	FindPath(a, b orb.Point) (orb.LineString, error)
}

// Dijkstra is the default Finder. The search graph is derived once at
// construction: one vertex per distinct coordinate, so features sharing an
// endpoint join into a single component, and one undirected edge per
// consecutive vertex pair, weighted by great-circle distance in meters.
// Read-only after construction.
type Dijkstra struct {
	graph  *core.Graph
	ids    map[orb.Point]string
	points map[string]orb.Point
}

// NewDijkstra builds the search graph for the given network.
func NewDijkstra(net *network.Network) *Dijkstra {
	d := &Dijkstra{
		graph:  core.NewGraph(false, true),
		ids:    make(map[orb.Point]string),
		points: make(map[string]orb.Point),
	}

	seen := make(map[[2]string]bool)
	for _, f := range net.Features() {
		for i := 1; i < len(f.Line); i++ {
			u := d.vertexID(f.Line[i-1])
			v := d.vertexID(f.Line[i])
			if u == v {
				continue
			}

			key := [2]string{u, v}
			if u > v {
				key = [2]string{v, u}
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			weight := int64(math.Round(geodesy.DistanceKm(f.Line[i-1], f.Line[i]) * 1000))
			d.graph.AddEdge(u, v, weight)
		}
	}

	return d
}

// FindPath implements Finder.
func (d *Dijkstra) FindPath(a, b orb.Point) (orb.LineString, error) {
	aid, ok := d.ids[a]
	if !ok {
		return nil, fmt.Errorf("origin %v is not a network vertex", a)
	}
	bid, ok := d.ids[b]
	if !ok {
		return nil, fmt.Errorf("destination %v is not a network vertex", b)
	}

	if aid == bid {
		return orb.LineString{a}, nil
	}

	dist, prev, err := dijkstra.Dijkstra(d.graph,
		dijkstra.Source(aid),
		dijkstra.WithReturnPath(),
	)
	if err != nil {
		return nil, fmt.Errorf("shortest path search failed: %w", err)
	}

	if del, ok := dist[bid]; !ok || del == math.MaxInt64 {
		return nil, ErrNoPath
	}

	ids := []string{bid}
	for cur := prev[bid]; cur != ""; cur = prev[cur] {
		ids = append(ids, cur)
	}
	if ids[len(ids)-1] != aid {
		return nil, ErrNoPath
	}

	path := make(orb.LineString, len(ids))
	for i, id := range ids {
		path[len(ids)-1-i] = d.points[id]
	}
	return path, nil
}

// vertexID interns a coordinate, assigning a stable numeric vertex id on
// first sight.
func (d *Dijkstra) vertexID(p orb.Point) string {
	if id, ok := d.ids[p]; ok {
		return id
	}
	id := strconv.Itoa(len(d.ids))
	d.ids[p] = id
	d.points[id] = p
	return id
}
