package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/geoarch/internal/metrics"
	"github.com/aretw0/geoarch/pkg/core"
	"github.com/aretw0/geoarch/pkg/geometry"
	"github.com/aretw0/geoarch/pkg/server"
)

func newTestServer(t *testing.T, opts ...server.Option) (*server.Server, *core.Service) {
	t.Helper()
	svc := core.NewService(context.Background(), nil, core.NewResolver(geometry.Ops{}, nil))
	return server.New(svc, opts...), svc
}

func do(t *testing.T, s *server.Server, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

const squareBody = `{"tool":"rectangle","geometry":{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]]]}}`

func decodeDraw(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	resp, body := do(t, s, "GET", "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"alive"}`, string(body))
}

func TestDraw(t *testing.T) {
	s, svc := newTestServer(t)

	resp, body := do(t, s, "POST", "/api/v1/shapes", squareBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	out := decodeDraw(t, body)
	assert.Equal(t, "accepted", out["status"])
	assert.Equal(t, map[string]any{
		"message":          "Rectangle saved",
		"severity":         "success",
		"dismiss_after_ms": 3000.0,
	}, out["notification"])
	assert.Equal(t, 1, svc.Len())

	t.Run("Contained", func(t *testing.T) {
		resp, body := do(t, s, "POST", "/api/v1/shapes",
			`{"tool":"polygon","geometry":{"type":"Polygon","coordinates":[[[1,1],[2,1],[2,2],[1,2],[1,1]]]}}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		out := decodeDraw(t, body)
		assert.Equal(t, "contained", out["status"])
		assert.Nil(t, out["shape"])
		assert.Equal(t, "Blocked: Shape is fully inside another!", out["notification"].(map[string]any)["message"])
	})

	t.Run("Trimmed", func(t *testing.T) {
		resp, body := do(t, s, "POST", "/api/v1/shapes",
			`{"tool":"polygon","geometry":{"type":"Polygon","coordinates":[[[2,0],[6,0],[6,4],[2,4],[2,0]]]}}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		out := decodeDraw(t, body)
		assert.Equal(t, "info", out["notification"].(map[string]any)["severity"])
		assert.Equal(t, "Polygon trimmed to avoid overlapping 1 shape(s)", out["notification"].(map[string]any)["message"])
		assert.Len(t, out["trimmed_by"], 1)
	})

	t.Run("Unsupported Geometry", func(t *testing.T) {
		resp, body := do(t, s, "POST", "/api/v1/shapes", `{"tool":"marker","geometry":{"type":"MultiPoint","coordinates":[[0,0]]}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "invalid", decodeDraw(t, body)["status"])
	})
}

func TestDrawCircle(t *testing.T) {
	s, svc := newTestServer(t)

	resp, body := do(t, s, "POST", "/api/v1/shapes",
		`{"tool":"circle","center":[13.4,52.5],"radius":250,"properties":{"label":"park"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	shapes := svc.List()
	require.Len(t, shapes, 1)
	assert.Equal(t, core.ShapeCircle, shapes[0].Type)
	require.NotNil(t, shapes[0].Radius)
	assert.Equal(t, 250.0, *shapes[0].Radius)
	assert.Equal(t, "park", shapes[0].Properties["label"])
}

func TestDrawBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Malformed JSON", `{"tool":`},
		{"Missing Tool", `{"geometry":{"type":"Point","coordinates":[0,0]}}`},
		{"Missing Geometry", `{"tool":"polygon"}`},
		{"Center Without Radius", `{"tool":"circle","center":[0,0]}`},
		{"Center On Polygon", `{"tool":"polygon","center":[0,0],"radius":5}`},
		{"Negative Radius", `{"tool":"circle","center":[0,0],"radius":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc := newTestServer(t)
			resp, body := do(t, s, "POST", "/api/v1/shapes", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.Zero(t, svc.Len())
		})
	}
}

func TestDeleteAndClear(t *testing.T) {
	s, svc := newTestServer(t)
	_, body := do(t, s, "POST", "/api/v1/shapes", squareBody)
	id := decodeDraw(t, body)["shape"].(map[string]any)["id"].(string)

	resp, body := do(t, s, "DELETE", "/api/v1/shapes/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"message":"Shape deleted"`)
	assert.Zero(t, svc.Len())

	resp, _ = do(t, s, "DELETE", "/api/v1/shapes/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	do(t, s, "POST", "/api/v1/shapes", squareBody)

	resp, _ = do(t, s, "DELETE", "/api/v1/shapes", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, svc.Len())

	resp, body = do(t, s, "DELETE", "/api/v1/shapes?confirm=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"removed":1`)
	assert.Contains(t, string(body), `"severity":"error"`)
	assert.Zero(t, svc.Len())
}

func TestListAndExport(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, "POST", "/api/v1/shapes", squareBody)
	do(t, s, "POST", "/api/v1/shapes", `{"tool":"polyline","geometry":{"type":"LineString","coordinates":[[0,0],[9,9]]}}`)

	resp, body := do(t, s, "GET", "/api/v1/shapes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fc, err := geojson.UnmarshalFeatureCollection(body)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Rectangle", fc.Features[0].Properties["shapeType"])
	assert.Equal(t, "LineString", fc.Features[1].Properties["shapeType"])

	resp, body = do(t, s, "GET", "/api/v1/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), server.ExportFileName)
	exported, err := geojson.UnmarshalFeatureCollection(body)
	require.NoError(t, err)
	assert.Len(t, exported.Features, 2)
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t, server.WithVersion("v1.2.3"))
	do(t, s, "POST", "/api/v1/shapes", squareBody)

	resp, body := do(t, s, "GET", "/api/v1/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Version string           `json:"version"`
		Service core.ServiceState `json:"service"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "v1.2.3", out.Version)
	assert.Equal(t, 1, out.Service.Shapes)
	assert.Equal(t, "none", out.Service.RepositoryType)
}

func TestMetrics(t *testing.T) {
	rec := metrics.New()
	s, svc := newTestServer(t, server.WithRecorder(rec))
	rec.TrackShapes(svc.Len)

	resp, _ := do(t, s, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	do(t, s, "POST", "/api/v1/shapes", squareBody)
	_, body := do(t, s, "GET", "/metrics", "")
	text := string(body)
	assert.Contains(t, text, "geoarch_shapes 1")
	assert.Contains(t, text, `geoarch_request_duration_ms_count{method="POST",route="`)
}

func TestMetricsDisabled(t *testing.T) {
	s, _ := newTestServer(t)
	resp, _ := do(t, s, "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
