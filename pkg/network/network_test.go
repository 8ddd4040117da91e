package network

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLines() []orb.LineString {
	return []orb.LineString{
		{{0, 0}, {1, 0}, {2, 0}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{10, 10}, {11, 10}},
	}
}

func TestNew(t *testing.T) {
	net, err := New(testLines())
	require.NoError(t, err)
	assert.Equal(t, 3, net.Len())

	// Feature order and indices follow input order.
	for i, f := range net.Features() {
		assert.Equal(t, i, f.Index)
	}

	bound := net.Bound()
	assert.Equal(t, orb.Point{0, 0}, bound.Min)
	assert.Equal(t, orb.Point{11, 10}, bound.Max)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]orb.LineString{{{1, 1}}})
	assert.Error(t, err)
}

func TestFromFeatureCollection(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}}))
	fc.Append(geojson.NewFeature(orb.Point{5, 5})) // skipped
	fc.Append(geojson.NewFeature(orb.MultiLineString{
		{{2, 2}, {3, 3}},
		{{4, 4}, {5, 5}},
	}))

	net, err := FromFeatureCollection(fc)
	require.NoError(t, err)
	assert.Equal(t, 3, net.Len())

	// MultiLineString members keep file order after the LineString.
	assert.Equal(t, orb.Point{2, 2}, net.Features()[1].Line[0])
	assert.Equal(t, orb.Point{4, 4}, net.Features()[2].Line[0])
}

func TestFromFeatureCollectionNoLines(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{5, 5}))

	_, err := FromFeatureCollection(fc)
	assert.Error(t, err)
}

func TestLoadGeoJSON(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	for _, line := range testLines() {
		fc.Append(geojson.NewFeature(line))
	}
	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "lanes.geojson")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	net, err := LoadGeoJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 3, net.Len())
}

func TestPersistenceRoundTrip(t *testing.T) {
	net1, err := New(testLines())
	require.NoError(t, err)

	tempFile := filepath.Join(t.TempDir(), fmt.Sprintf("net_%d.gob", time.Now().UnixNano()))
	require.NoError(t, net1.SaveToFile(tempFile))

	net2, err := LoadFromFile(tempFile)
	require.NoError(t, err)

	require.Equal(t, net1.Len(), net2.Len())
	for i := range net1.Features() {
		assert.Equal(t, net1.Features()[i].Line, net2.Features()[i].Line)
	}

	// The rebuilt index answers snaps identically.
	p := orb.Point{0.9, 0.4}
	s1, err := NewSnapper(net1, 0).Snap(p)
	require.NoError(t, err)
	s2, err := NewSnapper(net2, 0).Snap(p)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}
