package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAccessor struct {
	err   error
	calls int
}

func (f *failingAccessor) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	f.calls++
	return nil, f.err
}

func (f *failingAccessor) GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	f.calls++
	return nil, f.err
}

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          30,
		ReadyToTripRatio: 0.6,
	}
}

func TestCircuitBreakerGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through", func(t *testing.T) {
		g := driver.NewMemoryGraph()
		seedTriangle(t, g)
		cb := driver.NewCircuitBreakerGraph(g, breakerConfig(), "test", nil)

		v, err := cb.GetVertex(ctx, "a")
		require.NoError(t, err)
		edges, err := cb.GetEdges(ctx, v, types.Outgoing)
		require.NoError(t, err)
		assert.Equal(t, []string{"ab"}, edgeIDs(edges))
		assert.Equal(t, gobreaker.StateClosed, cb.State())
	})

	t.Run("trips on backend failures", func(t *testing.T) {
		backend := &failingAccessor{err: errors.New("connection refused")}
		cb := driver.NewCircuitBreakerGraph(backend, breakerConfig(), "test", nil)

		for i := 0; i < 3; i++ {
			_, err := cb.GetVertex(ctx, "a")
			assert.Error(t, err)
		}
		assert.Equal(t, gobreaker.StateOpen, cb.State())

		_, err := cb.GetVertex(ctx, "a")
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 3, backend.calls)
	})

	t.Run("stale reads do not trip", func(t *testing.T) {
		backend := &failingAccessor{err: types.ErrStaleVertex}
		cb := driver.NewCircuitBreakerGraph(backend, breakerConfig(), "test", nil)

		for i := 0; i < 5; i++ {
			_, err := cb.GetVertex(ctx, "a")
			assert.ErrorIs(t, err, types.ErrStaleVertex)
		}
		assert.Equal(t, gobreaker.StateClosed, cb.State())
	})
}
