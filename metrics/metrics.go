// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors the chunk-tree engine updates on
// every put/get/delete: nodes created versus deduplicated, nodes physically
// removed, and per-operation latency.
type Metrics struct {
	Registry prometheus.Registerer

	NodesStored     prometheus.Counter
	NodesDeduped    prometheus.Counter
	NodesDeleted    prometheus.Counter
	PutDuration     prometheus.Histogram
	GetDuration     prometheus.Histogram
	DeleteDuration  prometheus.Histogram
}

// NewMetrics registers and returns the engine's collector set against reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Registry: reg,
		NodesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seccs_nodes_stored_total",
			Help: "Chunk-tree nodes newly written to the backend.",
		}),
		NodesDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seccs_nodes_deduped_total",
			Help: "store_node calls that matched an existing node instead of writing.",
		}),
		NodesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seccs_nodes_deleted_total",
			Help: "Chunk-tree nodes physically removed from the backend.",
		}),
		PutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "seccs_put_content_seconds",
			Help: "Wall-clock duration of put_content calls.",
		}),
		GetDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "seccs_get_content_seconds",
			Help: "Wall-clock duration of get_content calls.",
		}),
		DeleteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "seccs_delete_content_seconds",
			Help: "Wall-clock duration of delete_content calls.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.NodesStored, m.NodesDeduped, m.NodesDeleted,
		m.PutDuration, m.GetDuration, m.DeleteDuration,
	} {
		if err := m.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Register registers an additional prometheus collector against the same
// registry, for callers that want to extend the default metric set.
func (m *Metrics) Register(collector prometheus.Collector) error {
	return m.Registry.Register(collector)
}
