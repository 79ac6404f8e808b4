package driver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// CircuitBreakerGraph wraps an accessor so that a failing backend trips a
// breaker and later calls fail fast with gobreaker.ErrOpenState. Stale
// element errors and context cancellation are answers, not failures, and
// never trip the breaker.
type CircuitBreakerGraph struct {
	accessor GraphAccessor
	cb       *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

// NewCircuitBreakerGraph wraps accessor with a breaker configured from cfg.
func NewCircuitBreakerGraph(accessor GraphAccessor, cfg config.CircuitBreakerConfig, name string, logger *slog.Logger) *CircuitBreakerGraph {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || types.IsStale(err) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("Graph accessor circuit breaker tripped", "name", name, "from", from.String(), "to", to.String())
				return
			}
			logger.Info("Graph accessor circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreakerGraph{
		accessor: accessor,
		cb:       gobreaker.NewCircuitBreaker(st),
		logger:   logger,
	}
}

// State returns the current breaker state.
func (c *CircuitBreakerGraph) State() gobreaker.State {
	return c.cb.State()
}

// GetVertex implements GraphAccessor
func (c *CircuitBreakerGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	v, err := c.cb.Execute(func() (interface{}, error) {
		return c.accessor.GetVertex(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Vertex), nil
}

// GetEdges implements GraphAccessor
func (c *CircuitBreakerGraph) GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	edges, err := c.cb.Execute(func() (interface{}, error) {
		return c.accessor.GetEdges(ctx, vertex, dir, edgeTypes...)
	})
	if err != nil {
		return nil, err
	}
	return edges.([]*types.Edge), nil
}

// Close closes the wrapped accessor.
func (c *CircuitBreakerGraph) Close() error {
	return CloseAccessor(c.accessor)
}

var _ GraphAccessor = (*CircuitBreakerGraph)(nil)
