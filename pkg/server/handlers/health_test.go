package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// brokenGraph fails every lookup with a non-stale error.
type brokenGraph struct{}

func (brokenGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	return nil, errors.New("connection refused")
}

func (brokenGraph) GetEdges(ctx context.Context, v *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	return nil, errors.New("connection refused")
}

func serve(t *testing.T, h gin.HandlerFunc, path string) map[string]any {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	h(c)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	response["_code"] = float64(w.Code)
	return response
}

func TestHealthCheck(t *testing.T) {
	handler := NewHealthHandler(nil)

	response := serve(t, handler.HealthCheck, "/health")
	assert.Equal(t, float64(http.StatusOK), response["_code"])
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "graphwalk", response["service"])
	assert.Contains(t, response, "timestamp")
	assert.Contains(t, response, "version")
}

func TestLivenessCheck(t *testing.T) {
	response := serve(t, NewHealthHandler(nil).LivenessCheck, "/live")
	assert.Equal(t, float64(http.StatusOK), response["_code"])
	assert.Equal(t, "alive", response["status"])
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name     string
		accessor driver.GraphAccessor
		code     int
		status   string
		dbStatus string
	}{
		{"nil accessor", nil, http.StatusServiceUnavailable, "not_ready", "unhealthy"},
		{"memory graph", driver.NewMemoryGraph(), http.StatusOK, "ready", "healthy"},
		{"broken backend", brokenGraph{}, http.StatusServiceUnavailable, "not_ready", "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := serve(t, NewHealthHandler(tt.accessor).ReadinessCheck, "/ready")
			assert.Equal(t, float64(tt.code), response["_code"])
			assert.Equal(t, tt.status, response["status"])

			checks, ok := response["checks"].(map[string]any)
			require.True(t, ok)
			db, ok := checks["database"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.dbStatus, db["status"])
		})
	}
}

func TestDetailedHealthCheck(t *testing.T) {
	response := serve(t, NewHealthHandler(nil).DetailedHealthCheck, "/health/detailed")
	assert.Equal(t, float64(http.StatusServiceUnavailable), response["_code"])
	assert.Equal(t, "unhealthy", response["status"])

	response = serve(t, NewHealthHandler(driver.NewMemoryGraph()).DetailedHealthCheck, "/health/detailed")
	assert.Equal(t, float64(http.StatusOK), response["_code"])
	checks := response["checks"].(map[string]any)
	db := checks["database"].(map[string]any)
	assert.Equal(t, "memory", db["provider"])
	assert.Contains(t, checks, "system")
}
