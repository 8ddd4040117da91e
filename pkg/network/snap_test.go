package network

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapper(t *testing.T, radiusKm float64, lines ...orb.LineString) *Snapper {
	t.Helper()
	net, err := New(lines)
	require.NoError(t, err)
	return NewSnapper(net, radiusKm)
}

func TestSnapNearestVertex(t *testing.T) {
	s := testSnapper(t, 0, testLines()...)

	// Between the first and second vertex of the first lane, closest to (1,0).
	snapped, err := s.Snap(orb.Point{0.9, 0.4})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 0}, snapped)

	// Nearer the vertical lane.
	snapped, err = s.Snap(orb.Point{2.3, 1.1})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{2, 1}, snapped)
}

func TestSnapIdempotent(t *testing.T) {
	s := testSnapper(t, 0, testLines()...)

	for _, line := range testLines() {
		for _, v := range line {
			snapped, err := s.Snap(v)
			require.NoError(t, err)
			assert.Equal(t, v, snapped, "snapping a network vertex must be the identity")
		}
	}
}

func TestSnapPhaseOneUsesSegmentDistance(t *testing.T) {
	// The long lane has no vertex near p, but its interior passes very
	// close; the short lane has a much closer vertex. Phase 1 must pick
	// the long lane by segment distance, and phase 2 must then return one
	// of ITS vertices, not the globally nearest vertex.
	long := orb.LineString{{0, 0}, {10, 0}}
	short := orb.LineString{{5, 2}, {6, 2}}
	s := testSnapper(t, 0, long, short)

	snapped, err := s.Snap(orb.Point{5, 0.1})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{0, 0}, snapped)
}

func TestSnapTieBreakByFeatureOrder(t *testing.T) {
	// Two lanes mirrored around the equator are exactly equidistant from a
	// point on it; the first feature in load order must win, and within it
	// the first of two equidistant vertices.
	north := orb.LineString{{0, 1}, {1, 1}}
	south := orb.LineString{{0, -1}, {1, -1}}
	s := testSnapper(t, 0, north, south)

	snapped, err := s.Snap(orb.Point{0.5, 0})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{0, 1}, snapped)
}

func TestSnapDeterministic(t *testing.T) {
	s := testSnapper(t, 0, testLines()...)
	p := orb.Point{1.7, 0.6}

	first, err := s.Snap(p)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		snapped, err := s.Snap(p)
		require.NoError(t, err)
		assert.Equal(t, first, snapped)
	}
}

func TestSnapNoReachableNetwork(t *testing.T) {
	s := testSnapper(t, 50, testLines()...)

	// Roughly 600 km from the nearest lane, radius is 50 km.
	_, err := s.Snap(orb.Point{5, 5})
	assert.ErrorIs(t, err, ErrNoReachableNetwork)
}

func TestSnapperDefaultRadius(t *testing.T) {
	s := testSnapper(t, 0, testLines()...)
	assert.Equal(t, DefaultSnapRadiusKm, s.Radius())

	s = testSnapper(t, 123, testLines()...)
	assert.Equal(t, 123.0, s.Radius())
}
