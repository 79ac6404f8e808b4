package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/soundprediction/graphwalk"
	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/metrics"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/server/dto"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.Server.RateLimit = 0
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *prometheus.Registry) {
	t.Helper()
	ctx := context.Background()
	g := driver.NewMemoryGraph()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.PutVertex(ctx, &types.Vertex{ID: id}))
	}
	require.NoError(t, g.PutEdge(ctx, &types.Edge{ID: "ab", Type: "KNOWS", StartID: "a", EndID: "b"}))
	require.NoError(t, g.PutEdge(ctx, &types.Edge{ID: "bc", Type: "KNOWS", StartID: "b", EndID: "c"}))

	promReg := prometheus.NewRegistry()
	reg := monitor.NewRegistry()
	metrics.NewCollector(promReg).Attach(reg)

	client, err := graphwalk.NewClient(g, &graphwalk.Config{Traversal: cfg.Traversal, Monitor: reg}, nil)
	require.NoError(t, err)

	s := New(cfg, client, WithGatherer(promReg))
	s.Setup()
	return s, promReg
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSetup(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8080

	s, _ := newTestServer(t, cfg)
	assert.NotNil(t, s.router)
	assert.Equal(t, "localhost:8080", s.Addr())
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	for _, path := range []string{"/health", "/live", "/ready", "/health/detailed"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestTraverseEndpoint(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	w := postJSON(t, s.Handler(), "/api/v1/traverse", dto.TraverseRequest{
		Start: []string{"a"},
		Order: "bfs",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.TraverseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ExecutionID)
	require.Len(t, resp.Paths, 3)
	assert.Equal(t, []string{"a"}, resp.Paths[0].Vertices)
	assert.Empty(t, resp.Paths[0].Edges)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Paths[2].Vertices)
	assert.Equal(t, []string{"ab", "bc"}, resp.Paths[2].Edges)
	assert.Equal(t, 2, resp.Paths[2].Length)
	assert.Equal(t, "(a)-[KNOWS]->(b)-[KNOWS]->(c)", resp.Paths[2].Rendered)
	assert.Equal(t, int64(3), resp.Stats.PathsYielded)
}

func TestTraverseEndpointErrors(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing start", map[string]any{"order": "dfs"}, http.StatusBadRequest, "invalid_request"},
		{"blank start", dto.TraverseRequest{Start: []string{" "}}, http.StatusBadRequest, "invalid_request"},
		{"bad order", dto.TraverseRequest{Start: []string{"a"}, Order: "random"}, http.StatusBadRequest, "invalid_request"},
		{"bad uniqueness", dto.TraverseRequest{Start: []string{"a"}, Uniqueness: "sometimes"}, http.StatusBadRequest, "invalid_traversal"},
		{"depth range", dto.TraverseRequest{Start: []string{"a"}, MinDepth: 3, MaxDepth: graphwalk.Depth(1)}, http.StatusBadRequest, "invalid_traversal"},
		{"unknown start", dto.TraverseRequest{Start: []string{"zz"}}, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, s.Handler(), "/api/v1/traverse", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestGetVertexEndpoint(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vertices/b", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var v types.Vertex
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "b", v.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/vertices/zz", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	w := postJSON(t, s.Handler(), "/api/v1/traverse", dto.TraverseRequest{Start: []string{"a"}})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `graphwalk_traversals_total{status="finished"} 1`)
}

func TestRequestIDPropagation(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/traverse", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = 0.001
	cfg.Server.Burst = 1
	s, _ := newTestServer(t, cfg)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/live", nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestNilClient(t *testing.T) {
	s := New(testConfig(), nil)
	s.Setup()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
