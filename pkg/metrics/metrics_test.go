package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	events := monitor.NewRegistry()
	detach := c.Attach(events)

	ctx := context.Background()
	events.Dispatch(ctx, monitor.Event{
		Kind:    monitor.TraversalFinished,
		Stats:   types.TraversalStats{PathsYielded: 5, Pruned: 2, UniquenessRejections: 3},
		Elapsed: 20 * time.Millisecond,
		Attrs:   map[string]string{"order": "dfs"},
	})
	events.Dispatch(ctx, monitor.Event{
		Kind:  monitor.TraversalFailed,
		Stats: types.TraversalStats{PathsYielded: 1},
		Err:   errors.New("vertex not found"),
		Attrs: map[string]string{"order": "bfs"},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.TraversalsTotal.WithLabelValues("finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TraversalsTotal.WithLabelValues("failed")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.PathsYielded))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.BranchesPruned))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.UniquenessRejections))

	n, err := testutil.GatherAndCount(reg, "graphwalk_traversal_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	detach()
	events.Dispatch(ctx, monitor.Event{Kind: monitor.TraversalFinished, Attrs: map[string]string{"order": "dfs"}})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TraversalsTotal.WithLabelValues("finished")))
}
