package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/geoarch/pkg/geometry"
)

// buildGeoarchBinary builds the CLI into dir and returns its path.
func buildGeoarchBinary(t *testing.T, dir string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI build in short mode")
	}
	bin := filepath.Join(dir, "geoarch")
	build := exec.Command("go", "build", "-o", bin, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build geoarch: %v\n%s", err, string(out))
	}
	return bin
}

// cli runs the binary against one map directory.
type cli struct {
	t   *testing.T
	bin string
	dir string
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := exec.Command(c.bin, append([]string{"-C", c.dir, "--no-versioning"}, args...)...)
	cmd.Dir = c.dir
	cmd.Env = append(os.Environ(), "GEOARCH_DIR=", "GEOARCH_ADAPTER=", "LOG_LEVEL=error")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "geoarch %s\n%s", strings.Join(args, " "), out)
	return out
}

const (
	squareA = `{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]]]}`
	squareB = `{"type":"Polygon","coordinates":[[[2,2],[6,2],[6,6],[2,6],[2,2]]]}`
	inside  = `{"type":"Polygon","coordinates":[[[1,1],[2,1],[2,2],[1,2],[1,1]]]}`
)

func TestCLI_DrawTrimExport(t *testing.T) {
	c := cli{t: t, bin: buildGeoarchBinary(t, t.TempDir()), dir: t.TempDir()}

	out := c.mustRun("init")
	assert.Contains(t, out, "Initialized empty geoarch map")
	assert.FileExists(t, filepath.Join(c.dir, "geoarch.yaml"))

	out = c.mustRun("draw", "--tool", "polygon", "--geometry", squareA)
	assert.Contains(t, out, "Polygon saved")

	out = c.mustRun("draw", "--tool", "rectangle", "--geometry", squareB)
	assert.Contains(t, out, "Rectangle trimmed to avoid overlapping 1 shape(s)")

	out, err := c.run("draw", "--tool", "polygon", "--geometry", inside)
	assert.Error(t, err, "a contained shape exits non-zero")
	assert.Contains(t, out, "Blocked: Shape is fully inside another!")

	exported := filepath.Join(c.dir, "out", "geo-data.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(exported), 0755))
	c.mustRun("export", "-o", exported)

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Polygon", fc.Features[0].Properties["shapeType"])
	assert.Equal(t, "Rectangle", fc.Features[1].Properties["shapeType"])
	assert.InDelta(t, 16.0, geometry.PlanarArea(fc.Features[0].Geometry), 1e-9)
	assert.InDelta(t, 12.0, geometry.PlanarArea(fc.Features[1].Geometry), 1e-9)
}

func TestCLI_ListDeleteClear(t *testing.T) {
	c := cli{t: t, bin: buildGeoarchBinary(t, t.TempDir()), dir: t.TempDir()}
	c.mustRun("init")
	c.mustRun("draw", "--tool", "polygon", "--geometry", squareA)
	c.mustRun("draw", "--tool", "polyline", "--geometry", `{"type":"LineString","coordinates":[[10,10],[12,12]]}`)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(c.mustRun("list", "--json")))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	id, ok := fc.Features[0].ID.(string)
	require.True(t, ok)

	table := c.mustRun("list")
	assert.Contains(t, table, id)
	assert.Contains(t, table, "LineString")

	assert.Contains(t, c.mustRun("delete", id), "Shape deleted")

	out := c.mustRun("delete", id)
	assert.Contains(t, out, "nothing to delete", "deleting an absent id is a no-op")

	_, err = c.run("clear")
	assert.Error(t, err, "clear without --yes is refused")

	assert.Contains(t, c.mustRun("clear", "--yes"), "1 shape(s) removed")

	fc, err = geojson.UnmarshalFeatureCollection([]byte(c.mustRun("list", "--json")))
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestCLI_Import(t *testing.T) {
	c := cli{t: t, bin: buildGeoarchBinary(t, t.TempDir()), dir: t.TempDir()}
	c.mustRun("init")

	surveys := filepath.Join(c.dir, "surveys", "north")
	require.NoError(t, os.MkdirAll(surveys, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(surveys, "a.geojson"), []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"shapeType":"Rectangle"},"geometry":`+squareA+`},
		{"type":"Feature","properties":{},"geometry":`+inside+`}
	]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(surveys, "b.geojson"), []byte(
		`{"type":"Feature","properties":{"name":"east"},"geometry":`+squareB+`}`), 0644))

	out := c.mustRun("import", filepath.Join(c.dir, "surveys", "**", "*.geojson"))
	assert.Contains(t, out, "2 accepted, 1 rejected")

	fc, err := geojson.UnmarshalFeatureCollection([]byte(c.mustRun("list", "--json")))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Rectangle", fc.Features[0].Properties["shapeType"])
	assert.Equal(t, "east", fc.Features[1].Properties["name"])
}
