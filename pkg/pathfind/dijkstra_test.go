package pathfind

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/searoute/pkg/network"
)

func testNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.New([]orb.LineString{
		{{0, 0}, {1, 0}, {2, 0}},
		{{2, 0}, {2, 1}}, // joins the first lane at (2,0)
		{{10, 10}, {11, 10}},
	})
	require.NoError(t, err)
	return net
}

func TestFindPathAcrossFeatures(t *testing.T) {
	d := NewDijkstra(testNetwork(t))

	// The endpoints sit on different features that share the vertex (2,0).
	path, err := d.FindPath(orb.Point{0, 0}, orb.Point{2, 1})
	require.NoError(t, err)

	expected := orb.LineString{{0, 0}, {1, 0}, {2, 0}, {2, 1}}
	assert.Equal(t, expected, path)
}

func TestFindPathReversed(t *testing.T) {
	d := NewDijkstra(testNetwork(t))

	path, err := d.FindPath(orb.Point{2, 1}, orb.Point{0, 0})
	require.NoError(t, err)

	require.Len(t, path, 4)
	assert.Equal(t, orb.Point{2, 1}, path[0])
	assert.Equal(t, orb.Point{0, 0}, path[3])
}

func TestFindPathSameVertex(t *testing.T) {
	d := NewDijkstra(testNetwork(t))

	path, err := d.FindPath(orb.Point{1, 0}, orb.Point{1, 0})
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{1, 0}}, path)
}

func TestFindPathDisconnected(t *testing.T) {
	d := NewDijkstra(testNetwork(t))

	_, err := d.FindPath(orb.Point{0, 0}, orb.Point{10, 10})
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestFindPathRejectsNonVertex(t *testing.T) {
	d := NewDijkstra(testNetwork(t))

	_, err := d.FindPath(orb.Point{0.5, 0.5}, orb.Point{2, 1})
	assert.Error(t, err)

	_, err = d.FindPath(orb.Point{0, 0}, orb.Point{99, 99})
	assert.Error(t, err)
}

func TestFindPathDeterministic(t *testing.T) {
	d := NewDijkstra(testNetwork(t))

	first, err := d.FindPath(orb.Point{0, 0}, orb.Point{2, 1})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		path, err := d.FindPath(orb.Point{0, 0}, orb.Point{2, 1})
		require.NoError(t, err)
		assert.Equal(t, first, path)
	}
}
