package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("13.40, 52.52")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{13.40, 52.52}, p)

	for _, bad := range []string{"", "13.4", "a,b", "1,2,3"} {
		_, err := parsePoint(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadFeatures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	collection := write("fc.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{}},
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"name":"road"}}
	]}`)
	single := write("one.geojson", `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":null}`)
	geometryOnly := write("geom.geojson", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)

	features, err := readFeatures(collection)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "road", features[1].Properties["name"])

	features, err = readFeatures(single)
	require.NoError(t, err)
	require.Len(t, features, 1)

	_, err = readFeatures(geometryOnly)
	assert.Error(t, err)

	g, props, err := readGeometryFile(geometryOnly)
	require.NoError(t, err)
	assert.Equal(t, "Polygon", g.Type)
	assert.Nil(t, props)

	g, _, err = readGeometryFile(single)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 2}, g.Coordinates)
}
