// Package metrics exports traversal activity as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/soundprediction/graphwalk/pkg/monitor"
)

const namespace = "graphwalk"

// Collector turns monitor events into Prometheus metrics.
type Collector struct {
	TraversalsTotal      *prometheus.CounterVec
	PathsYielded         prometheus.Counter
	BranchesPruned       prometheus.Counter
	UniquenessRejections prometheus.Counter
	TraversalDuration    *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		TraversalsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traversals_total",
			Help:      "Traversal executions by final status",
		}, []string{"status"}),
		PathsYielded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paths_yielded_total",
			Help:      "Paths returned to consumers",
		}),
		BranchesPruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "branches_pruned_total",
			Help:      "Branches whose evaluation stopped descent",
		}),
		UniquenessRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uniqueness_rejections_total",
			Help:      "Candidate branches refused by the uniqueness policy",
		}),
		TraversalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "traversal_duration_seconds",
			Help:      "Wall time from first pull to the end of a traversal",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16), // 0.5ms to ~16s
		}, []string{"order"}),
	}
}

// Attach registers the collector with reg for the completion events of
// traversals carrying any of tags, or of all traversals without tags.
// Counters are fed from each execution's final stats.
func (c *Collector) Attach(reg *monitor.Registry, tags ...string) (detach func()) {
	return reg.RegisterAll([]monitor.EventKind{monitor.TraversalFinished, monitor.TraversalFailed}, c, tags...)
}

// HandleEvent implements monitor.Listener.
func (c *Collector) HandleEvent(ctx context.Context, e monitor.Event) error {
	status := "finished"
	if e.Kind == monitor.TraversalFailed {
		status = "failed"
	}
	c.TraversalsTotal.WithLabelValues(status).Inc()
	c.PathsYielded.Add(float64(e.Stats.PathsYielded))
	c.BranchesPruned.Add(float64(e.Stats.Pruned))
	c.UniquenessRejections.Add(float64(e.Stats.UniquenessRejections))
	c.TraversalDuration.WithLabelValues(e.Attrs["order"]).Observe(e.Elapsed.Seconds())
	return nil
}
