package monitor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) HandleEvent(ctx context.Context, e monitor.Event) error {
	*r.log = append(*r.log, r.name+":"+string(e.Kind))
	return nil
}

func TestRegistryDispatchOrder(t *testing.T) {
	var log []string
	reg := monitor.NewRegistry()

	reg.Register(monitor.PathYielded, recorder{"tagged-x", &log}, "x")
	reg.Register(monitor.PathYielded, recorder{"plain", &log})
	reg.Register(monitor.PathYielded, recorder{"tagged-y", &log}, "y")
	reg.Register(monitor.PathYielded, recorder{"tagged-xy", &log}, "x", "y")

	reg.Dispatch(context.Background(), monitor.Event{Kind: monitor.PathYielded, Tags: []string{"y", "x"}})

	assert.Equal(t, []string{
		"plain:path_yielded",
		"tagged-y:path_yielded",
		"tagged-xy:path_yielded",
		"tagged-x:path_yielded",
	}, log)
}

func TestRegistryTagFiltering(t *testing.T) {
	var log []string
	reg := monitor.NewRegistry()
	reg.Register(monitor.TraversalStarted, recorder{"audit", &log}, "audit")

	reg.Dispatch(context.Background(), monitor.Event{Kind: monitor.TraversalStarted})
	assert.Empty(t, log)
	assert.False(t, reg.HasListeners(monitor.TraversalStarted))
	assert.True(t, reg.HasListeners(monitor.TraversalStarted, "audit"))

	reg.Dispatch(context.Background(), monitor.Event{Kind: monitor.TraversalStarted, Tags: []string{"audit"}})
	assert.Equal(t, []string{"audit:traversal_started"}, log)
}

func TestRegistryUnregister(t *testing.T) {
	var log []string
	reg := monitor.NewRegistry()
	unregister := reg.Register(monitor.BranchPruned, recorder{"r", &log})

	reg.Dispatch(context.Background(), monitor.Event{Kind: monitor.BranchPruned})
	unregister()
	unregister()
	reg.Dispatch(context.Background(), monitor.Event{Kind: monitor.BranchPruned})

	assert.Len(t, log, 1)
	assert.False(t, reg.HasListeners(monitor.BranchPruned))
}

func TestRegistryListenerFailuresAreContained(t *testing.T) {
	var sunk []error
	reg := monitor.NewRegistry(monitor.WithErrorSink(func(kind monitor.EventKind, err error) {
		sunk = append(sunk, err)
	}))

	var reached bool
	boom := errors.New("boom")
	reg.Register(monitor.PathYielded, monitor.ListenerFunc(func(ctx context.Context, e monitor.Event) error {
		return boom
	}))
	reg.Register(monitor.PathYielded, monitor.ListenerFunc(func(ctx context.Context, e monitor.Event) error {
		panic("listener bug")
	}))
	reg.Register(monitor.PathYielded, monitor.ListenerFunc(func(ctx context.Context, e monitor.Event) error {
		reached = true
		return nil
	}))

	reg.Dispatch(context.Background(), monitor.Event{Kind: monitor.PathYielded})

	assert.True(t, reached)
	require.Len(t, sunk, 2)
	assert.ErrorIs(t, sunk[0], boom)
	var panicErr *utils.PanicError
	assert.ErrorAs(t, sunk[1], &panicErr)
}

func TestRegistryAnnouncesRegistrations(t *testing.T) {
	var kinds []string
	reg := monitor.NewRegistry()
	reg.Register(monitor.ListenerRegistered, monitor.ListenerFunc(func(ctx context.Context, e monitor.Event) error {
		kinds = append(kinds, e.Attrs["kind"])
		return nil
	}))

	unregister := reg.RegisterAll([]monitor.EventKind{monitor.TraversalStarted, monitor.TraversalFinished},
		monitor.ListenerFunc(func(ctx context.Context, e monitor.Event) error { return nil }))
	defer unregister()

	assert.Equal(t, []string{"listener_registered", "traversal_started", "traversal_finished"}, kinds)
}

func TestNilRegistry(t *testing.T) {
	var reg *monitor.Registry
	assert.False(t, reg.HasListeners(monitor.PathYielded))
	assert.NotPanics(t, func() {
		reg.Dispatch(context.Background(), monitor.Event{Kind: monitor.PathYielded})
	})
}
